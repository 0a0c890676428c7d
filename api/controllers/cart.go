package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/api/middleware"
	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/api/validators"
	"github.com/greenbasket/greenbasket-backend/internal/cart"
	"github.com/greenbasket/greenbasket-backend/internal/products"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
)

type addItemRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid"`
	VariantLabel string `json:"variant_label" validate:"max=50"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
}

type setQuantityRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid"`
	VariantLabel string `json:"variant_label" validate:"max=50"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,min=2,max=32"`
}

type CartController struct {
	store    *cart.Store
	products products.Service
	metrics  *metrics.Registry
	log      *logger.Logger
}

func NewCartController(store *cart.Store, products products.Service, reg *metrics.Registry, log *logger.Logger) *CartController {
	return &CartController{store: store, products: products, metrics: reg, log: log}
}

func (c *CartController) session(r *http.Request) (string, error) {
	sid := middleware.CartSessionFrom(r.Context())
	if sid == "" {
		return "", errors.New(errors.CodeInternal, "cart session missing")
	}
	return sid, nil
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	view, err := c.store.Get(r.Context(), sid)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, view)
}

// AddItem resolves the product against the live catalog before adding,
// so prices in the cart are always the server's.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in addItemRequest
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	productID, err := uuid.Parse(in.ProductID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "invalid product id"))
		return
	}

	line, err := c.products.ResolveLine(r.Context(), productID, in.VariantLabel, in.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	view, err := c.store.AddLine(r.Context(), sid, line)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	c.countMutation("add")
	responses.WriteJSON(w, http.StatusOK, view)
}

func (c *CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in setQuantityRequest
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	productID, err := uuid.Parse(in.ProductID)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, errors.New(errors.CodeValidation, "invalid product id"))
		return
	}

	view, err := c.store.SetQuantity(r.Context(), sid, productID, in.VariantLabel, in.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	c.countMutation("set_quantity")
	responses.WriteJSON(w, http.StatusOK, view)
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	productID, err := pathUUID(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	variantLabel := r.URL.Query().Get("variant")

	view, err := c.store.RemoveLine(r.Context(), sid, productID, variantLabel)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	c.countMutation("remove")
	responses.WriteJSON(w, http.StatusOK, view)
}

func (c *CartController) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	var in applyCouponRequest
	if err := validators.DecodeJSONBody(w, r, &in); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	view, err := c.store.ApplyCoupon(r.Context(), sid, in.Code)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	if c.metrics != nil {
		outcome := "rejected"
		if view.Discount.Applied {
			outcome = "applied"
		}
		c.metrics.CouponApplications.WithLabelValues(outcome).Inc()
	}
	responses.WriteJSON(w, http.StatusOK, view)
}

func (c *CartController) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	view, err := c.store.RemoveCoupon(r.Context(), sid)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}
	responses.WriteJSON(w, http.StatusOK, view)
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	sid, err := c.session(r)
	if err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	if err := c.store.Clear(r.Context(), sid); err != nil {
		responses.WriteError(r.Context(), w, c.log, err)
		return
	}

	c.countMutation("clear")
	responses.WriteMessage(w, http.StatusOK, "cart cleared")
}

func (c *CartController) countMutation(op string) {
	if c.metrics != nil {
		c.metrics.CartMutations.WithLabelValues(op).Inc()
	}
}
