package banners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, banner *models.Banner) error
	Update(ctx context.Context, banner *models.Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
}

type gormRepo struct {
	db *gorm.DB
}

func NewRepository(client *db.Client) Repository {
	return &gormRepo{db: client.Gorm()}
}

func (r *gormRepo) Create(ctx context.Context, banner *models.Banner) error {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return errors.Wrap(errors.CodeInternal, err, "create banner")
	}
	return nil
}

func (r *gormRepo) Update(ctx context.Context, banner *models.Banner) error {
	res := r.db.WithContext(ctx).Model(&models.Banner{}).
		Where("id = ?", banner.ID).
		Updates(banner)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "update banner")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "banner not found")
	}
	return nil
}

func (r *gormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "delete banner")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "banner not found")
	}
	return nil
}

func (r *gormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "banner not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get banner")
	}
	return &banner, nil
}

func (r *gormRepo) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	q := r.db.WithContext(ctx).Model(&models.Banner{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var out []models.Banner
	if err := q.Order("position ASC, created_at DESC").Find(&out).Error; err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "list banners")
	}
	return out, nil
}
