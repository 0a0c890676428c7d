package products

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/internal/pricing"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type CreateProductInput struct {
	Name          string   `json:"name" validate:"required,min=2,max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	Price         int64    `json:"price" validate:"required,gt=0"`
	OriginalPrice *int64   `json:"original_price" validate:"omitempty,gt=0"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url"`
	Tags          []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Featured      bool     `json:"featured"`
	CategoryID    string   `json:"category_id" validate:"required,uuid"`
	BrandID       string   `json:"brand_id" validate:"omitempty,uuid"`

	Variants []VariantInput `json:"variants" validate:"max=20,dive"`
}

type VariantInput struct {
	Label string `json:"label" validate:"required,min=1,max=50"`
	Price *int64 `json:"price" validate:"omitempty,gt=0"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type UpdateProductInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=2,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=2000"`
	Price         *int64   `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice *int64   `json:"original_price" validate:"omitempty,gt=0"`
	ImageURL      *string  `json:"image_url" validate:"omitempty,url"`
	Tags          []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
	Stock         *int     `json:"stock" validate:"omitempty,gte=0"`
	Featured      *bool    `json:"featured"`
	Active        *bool    `json:"active"`
}

type CreateCategoryInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type CreateBrandInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
}

type Service interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[models.Product], error)

	CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateBrand(ctx context.Context, in CreateBrandInput) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)

	// ResolveLine prices a purchase request against the live catalog
	// so the cart never trusts client-sent amounts.
	ResolveLine(ctx context.Context, productID uuid.UUID, variantLabel string, quantity int) (pricing.Line, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "products: repo is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "products: logger is required")
	}
	return &service{repo: repo, log: log}, nil
}

func (s *service) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	categoryID, err := uuid.Parse(in.CategoryID)
	if err != nil {
		return nil, errors.New(errors.CodeValidation, "invalid category id")
	}

	product := &models.Product{
		ID:            uuid.New(),
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		ImageURL:      in.ImageURL,
		Tags:          in.Tags,
		Stock:         in.Stock,
		Featured:      in.Featured,
		Active:        true,
		CategoryID:    categoryID,
	}
	if in.BrandID != "" {
		brandID, err := uuid.Parse(in.BrandID)
		if err != nil {
			return nil, errors.New(errors.CodeValidation, "invalid brand id")
		}
		product.BrandID = brandID
	}
	for _, v := range in.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			ID:        uuid.New(),
			ProductID: product.ID,
			Label:     v.Label,
			Price:     v.Price,
			Stock:     v.Stock,
		})
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithField(ctx, "product_id", product.ID.String()), "product created")
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		product.OriginalPrice = in.OriginalPrice
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.Tags != nil {
		product.Tags = in.Tags
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}
	if in.Active != nil {
		product.Active = *in.Active
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, f Filter, p pagination.Params) (pagination.Page[models.Product], error) {
	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return pagination.Page[models.Product]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s *service) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	category := &models.Category{
		ID:       uuid.New(),
		Name:     in.Name,
		Slug:     slugify(in.Name),
		ImageURL: in.ImageURL,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateBrand(ctx context.Context, in CreateBrandInput) (*models.Brand, error) {
	brand := &models.Brand{
		ID:      uuid.New(),
		Name:    in.Name,
		Slug:    slugify(in.Name),
		LogoURL: in.LogoURL,
	}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *service) ResolveLine(ctx context.Context, productID uuid.UUID, variantLabel string, quantity int) (pricing.Line, error) {
	if quantity <= 0 {
		return pricing.Line{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}

	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return pricing.Line{}, err
	}
	if !product.Active {
		return pricing.Line{}, errors.New(errors.CodeNotFound, "product not found")
	}

	line := pricing.Line{
		ProductID:     product.ID,
		Name:          product.Name,
		ImageURL:      product.ImageURL,
		UnitPrice:     product.Price,
		OriginalPrice: product.OriginalPrice,
		Quantity:      quantity,
	}

	// Every purchasable line carries a variant. No label picks the
	// product's first one.
	var variant *models.ProductVariant
	if variantLabel == "" {
		if len(product.Variants) == 0 {
			return pricing.Line{}, errors.New(errors.CodeValidation, "this product has no options")
		}
		variant = &product.Variants[0]
	} else {
		variant = findVariant(product.Variants, variantLabel)
		if variant == nil {
			return pricing.Line{}, errors.New(errors.CodeValidation, "unknown variant")
		}
	}

	line.VariantLabel = variant.Label
	if variant.Price != nil {
		line.UnitPrice = *variant.Price
		// A variant override has no markdown display of its own.
		line.OriginalPrice = nil
	}
	return line, nil
}

func findVariant(variants []models.ProductVariant, label string) *models.ProductVariant {
	for i := range variants {
		if strings.EqualFold(variants[i].Label, label) {
			return &variants[i]
		}
	}
	return nil
}

func slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, lowered)
	words := strings.FieldsFunc(mapped, func(r rune) bool { return r == '-' })
	return strings.Join(words, "-")
}
