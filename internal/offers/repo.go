package offers

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

type Repository interface {
	Create(ctx context.Context, offer *models.Offer) error
	Update(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	GetByCode(ctx context.Context, code string) (*models.Offer, error)
	List(ctx context.Context, p pagination.Params) ([]models.Offer, int64, error)
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

func (r *gormRepo) Create(ctx context.Context, offer *models.Offer) error {
	offer.Code = normalizeCode(offer.Code)
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "offer code already exists")
		}
		return errors.Wrap(errors.CodeInternal, err, "create offer")
	}
	return nil
}

func (r *gormRepo) Update(ctx context.Context, offer *models.Offer) error {
	offer.Code = normalizeCode(offer.Code)
	res := r.db.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ?", offer.ID).
		Updates(offer)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return errors.New(errors.CodeConflict, "offer code already exists")
		}
		return errors.Wrap(errors.CodeInternal, res.Error, "update offer")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "offer not found")
	}
	return nil
}

func (r *gormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Offer{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "delete offer")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "offer not found")
	}
	return nil
}

func (r *gormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "offer not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get offer")
	}
	return &offer, nil
}

func (r *gormRepo) GetByCode(ctx context.Context, code string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).First(&offer, "code = ?", normalizeCode(code)).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "offer not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get offer by code")
	}
	return &offer, nil
}

func (r *gormRepo) List(ctx context.Context, p pagination.Params) ([]models.Offer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Offer{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "count offers")
	}

	var out []models.Offer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "list offers")
	}
	return out, total, nil
}

// Coupon codes are matched case-insensitively, stored upper.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
