package banners

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

type CreateBannerInput struct {
	Title    string `json:"title" validate:"required,min=2,max=200"`
	Subtitle string `json:"subtitle" validate:"max=300"`
	ImageURL string `json:"image_url" validate:"required,url"`
	LinkURL  string `json:"link_url" validate:"omitempty,url"`
	Position int    `json:"position" validate:"gte=0"`
	Active   bool   `json:"active"`
}

type UpdateBannerInput struct {
	Title    *string `json:"title" validate:"omitempty,min=2,max=200"`
	Subtitle *string `json:"subtitle" validate:"omitempty,max=300"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	LinkURL  *string `json:"link_url" validate:"omitempty,url"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
	Active   *bool   `json:"active"`
}

type Service interface {
	CreateBanner(ctx context.Context, in CreateBannerInput) (*models.Banner, error)
	UpdateBanner(ctx context.Context, id uuid.UUID, in UpdateBannerInput) (*models.Banner, error)
	DeleteBanner(ctx context.Context, id uuid.UUID) error
	// ListBanners returns active banners ordered for the storefront
	// hero; admins see everything.
	ListBanners(ctx context.Context, includeInactive bool) ([]models.Banner, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "banners: repo is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "banners: logger is required")
	}
	return &service{repo: repo, log: log}, nil
}

func (s *service) CreateBanner(ctx context.Context, in CreateBannerInput) (*models.Banner, error) {
	banner := &models.Banner{
		ID:       uuid.New(),
		Title:    in.Title,
		Subtitle: in.Subtitle,
		ImageURL: in.ImageURL,
		LinkURL:  in.LinkURL,
		Position: in.Position,
		Active:   in.Active,
	}
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *service) UpdateBanner(ctx context.Context, id uuid.UUID, in UpdateBannerInput) (*models.Banner, error) {
	banner, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		banner.Title = *in.Title
	}
	if in.Subtitle != nil {
		banner.Subtitle = *in.Subtitle
	}
	if in.ImageURL != nil {
		banner.ImageURL = *in.ImageURL
	}
	if in.LinkURL != nil {
		banner.LinkURL = *in.LinkURL
	}
	if in.Position != nil {
		banner.Position = *in.Position
	}
	if in.Active != nil {
		banner.Active = *in.Active
	}

	if err := s.repo.Update(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *service) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ListBanners(ctx context.Context, includeInactive bool) ([]models.Banner, error) {
	return s.repo.List(ctx, !includeInactive)
}
