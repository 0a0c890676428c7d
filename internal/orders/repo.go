package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

// ErrDuplicateSession marks an insert that lost the race on the
// checkout session unique constraint.
var ErrDuplicateSession = errors.New(errors.CodeConflict, "order already exists for checkout session")

type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.OrderStatus
}

type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	List(ctx context.Context, f ListFilter, p pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
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

func (r *gormRepo) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSession
		}
		return errors.Wrap(errors.CodeInternal, err, "create order")
	}
	return nil
}

func (r *gormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get order")
	}
	return &order, nil
}

func (r *gormRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		First(&order, "checkout_session_id = ?", sessionID).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "find order by session")
	}
	return &order, nil
}

func (r *gormRepo) List(ctx context.Context, f ListFilter, p pagination.Params) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "count orders")
	}

	var out []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "list orders")
	}
	return out, total, nil
}

func (r *gormRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	return nil
}
