package offers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type CreateOfferInput struct {
	Code        string             `json:"code" validate:"required,min=2,max=32"`
	Description string             `json:"description" validate:"max=500"`
	Scope       enums.OfferScope   `json:"scope" validate:"required,oneof=cart product"`
	Type        enums.DiscountType `json:"type" validate:"required,oneof=percentage fixed"`
	Value       float64            `json:"value" validate:"required,gt=0"`
	ProductIDs  []string           `json:"product_ids" validate:"dive,uuid"`
	Active      bool               `json:"active"`
	StartsAt    *time.Time         `json:"starts_at"`
	ExpiresAt   *time.Time         `json:"expires_at"`
}

type UpdateOfferInput struct {
	Description *string    `json:"description" validate:"omitempty,max=500"`
	Value       *float64   `json:"value" validate:"omitempty,gt=0"`
	ProductIDs  []string   `json:"product_ids" validate:"dive,uuid"`
	Active      *bool      `json:"active"`
	StartsAt    *time.Time `json:"starts_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Service is the back-office surface for coupon offers. The discount
// resolver reads offers through FindLiveByCode.
type Service interface {
	CreateOffer(ctx context.Context, in CreateOfferInput) (*models.Offer, error)
	UpdateOffer(ctx context.Context, id uuid.UUID, in UpdateOfferInput) (*models.Offer, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
	GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListOffers(ctx context.Context, p pagination.Params) (pagination.Page[models.Offer], error)
	FindLiveByCode(ctx context.Context, code string) (*models.Offer, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "offers: repo is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "offers: logger is required")
	}
	return &service{repo: repo, log: log, now: time.Now}, nil
}

func (s *service) CreateOffer(ctx context.Context, in CreateOfferInput) (*models.Offer, error) {
	if in.Type == enums.DiscountTypePercentage && in.Value > 100 {
		return nil, errors.New(errors.CodeValidation, "percentage value cannot exceed 100")
	}
	if in.Scope == enums.OfferScopeProduct && len(in.ProductIDs) == 0 {
		return nil, errors.New(errors.CodeValidation, "product-scoped offers need at least one product")
	}

	offer := &models.Offer{
		ID:          uuid.New(),
		Code:        in.Code,
		Description: in.Description,
		Scope:       in.Scope,
		Type:        in.Type,
		Value:       in.Value,
		ProductIDs:  in.ProductIDs,
		Active:      in.Active,
		StartsAt:    in.StartsAt,
		ExpiresAt:   in.ExpiresAt,
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "offer_code", offer.Code), "offer created")
	return offer, nil
}

func (s *service) UpdateOffer(ctx context.Context, id uuid.UUID, in UpdateOfferInput) (*models.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Description != nil {
		offer.Description = *in.Description
	}
	if in.Value != nil {
		if offer.Type == enums.DiscountTypePercentage && *in.Value > 100 {
			return nil, errors.New(errors.CodeValidation, "percentage value cannot exceed 100")
		}
		offer.Value = *in.Value
	}
	if in.ProductIDs != nil {
		offer.ProductIDs = in.ProductIDs
	}
	if in.Active != nil {
		offer.Active = *in.Active
	}
	if in.StartsAt != nil {
		offer.StartsAt = in.StartsAt
	}
	if in.ExpiresAt != nil {
		offer.ExpiresAt = in.ExpiresAt
	}

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListOffers(ctx context.Context, p pagination.Params) (pagination.Page[models.Offer], error) {
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return pagination.Page[models.Offer]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

// FindLiveByCode returns the offer for code only when it is active and
// inside its validity window.
func (s *service) FindLiveByCode(ctx context.Context, code string) (*models.Offer, error) {
	offer, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !offer.Live(s.now()) {
		return nil, errors.New(errors.CodeNotFound, "offer not found")
	}
	return offer, nil
}
