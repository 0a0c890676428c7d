package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

// Filter narrows storefront product listings.
type Filter struct {
	CategorySlug string
	BrandSlug    string
	Search       string
	Featured     *bool
	ActiveOnly   bool
}

type Repository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]models.Product, int64, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error
	ListBrands(ctx context.Context) ([]models.Brand, error)

	WithTx(tx *gorm.DB) Repository
}

type gormRepo struct {
	db *gorm.DB
}

func NewRepository(client *db.Client) Repository {
	return &gormRepo{db: client.Gorm()}
}

func (r *gormRepo) WithTx(tx *gorm.DB) Repository {
	return &gormRepo{db: tx}
}

func (r *gormRepo) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return errors.Wrap(errors.CodeInternal, err, "create product")
	}
	return nil
}

func (r *gormRepo) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(product)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *gormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *gormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "product not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get product")
	}
	return &product, nil
}

func (r *gormRepo) List(ctx context.Context, f Filter, p pagination.Params) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.CategorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.BrandSlug != "" {
		q = q.Joins("JOIN brands ON brands.id = products.brand_id").
			Where("brands.slug = ?", f.BrandSlug)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(strings.TrimSpace(f.Search)) + "%"
		q = q.Where("LOWER(products.name) LIKE ?", needle)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "count products")
	}

	var out []models.Product
	err := q.Preload("Category").
		Preload("Brand").
		Preload("Variants").
		Order("products.created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "list products")
	}
	return out, total, nil
}

func (r *gormRepo) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "category already exists")
		}
		return errors.Wrap(errors.CodeInternal, err, "create category")
	}
	return nil
}

func (r *gormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list categories")
	}
	return out, nil
}

func (r *gormRepo) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "brand already exists")
		}
		return errors.Wrap(errors.CodeInternal, err, "create brand")
	}
	return nil
}

func (r *gormRepo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list brands")
	}
	return out, nil
}
