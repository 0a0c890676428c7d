package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/products"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type ProductsController struct {
	products products.Service
	log      *logger.Logger
}

func NewProductsController(svc products.Service, log *logger.Logger) *ProductsController {
	return &ProductsController{products: svc, log: log}
}

// List serves the storefront catalog with optional filters.
func (c *ProductsController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := products.Filter{
		CategorySlug: q.Get("category"),
		BrandSlug:    q.Get("brand"),
		Search:       q.Get("q"),
		ActiveOnly:   true,
	}
	if q.Get("featured") == "true" {
		featured := true
		filter.Featured = &featured
	}

	page, err := c.products.ListProducts(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, page)
}

func (c *ProductsController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	product, err := c.products.GetProduct(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, product)
}

func (c *ProductsController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.products.ListCategories(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, categories)
}

func (c *ProductsController) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := c.products.ListBrands(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, brands)
}

// --- admin ---

func (c *ProductsController) Create(w http.ResponseWriter, r *http.Request) {
	var in products.CreateProductInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	product, err := c.products.CreateProduct(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, product)
}

func (c *ProductsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in products.UpdateProductInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	product, err := c.products.UpdateProduct(r.Context(), id, in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, product)
}

func (c *ProductsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	if err := c.products.DeleteProduct(r.Context(), id); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteMessage(w, http.StatusOK, "product deleted")
}

func (c *ProductsController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in products.CreateCategoryInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	category, err := c.products.CreateCategory(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, category)
}

func (c *ProductsController) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var in products.CreateBrandInput
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	brand, err := c.products.CreateBrand(r.Context(), in)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusCreated, brand)
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation, "invalid "+name)
	}
	return id, nil
}
