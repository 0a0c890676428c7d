package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// IncrementOrderStats bumps the lifetime purchase counters. Runs
	// inside the reconciliation transaction via WithTx.
	IncrementOrderStats(ctx context.Context, userID uuid.UUID, amount int64, at time.Time) error
	List(ctx context.Context, p pagination.Params) ([]models.User, int64, error)
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

func (r *gormRepo) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "email already registered")
		}
		return errors.Wrap(errors.CodeInternal, err, "create user")
	}
	return nil
}

func (r *gormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get user")
	}
	return &user, nil
}

func (r *gormRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New(errors.CodeNotFound, "user not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "get user by email")
	}
	return &user, nil
}

func (r *gormRepo) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("Name", "Address", "UpdatedAt").
		Updates(user)
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "user not found")
	}
	return nil
}

func (r *gormRepo) IncrementOrderStats(ctx context.Context, userID uuid.UUID, amount int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"order_count":   gorm.Expr("order_count + 1"),
			"total_spent":   gorm.Expr("total_spent + ?", amount),
			"last_order_at": at,
		})
	if res.Error != nil {
		return errors.Wrap(errors.CodeInternal, res.Error, "increment order stats")
	}
	if res.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "user not found")
	}
	return nil
}

func (r *gormRepo) List(ctx context.Context, p pagination.Params) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "count users")
	}

	var out []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "list users")
	}
	return out, total, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
