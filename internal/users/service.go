package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/auth"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
	"github.com/greenbasket/greenbasket-backend/pkg/security"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name    *string        `json:"name" validate:"omitempty,min=2,max=100"`
	Address *types.Address `json:"address"`
}

// Session is what a successful register or login hands back.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*models.User, error)
	ListCustomers(ctx context.Context, p pagination.Params) (pagination.Page[models.User], error)
}

type service struct {
	repo   Repository
	hasher *security.Hasher
	tokens *auth.TokenManager
	log    *logger.Logger
}

func NewService(repo Repository, hasher *security.Hasher, tokens *auth.TokenManager, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "users: repo is required")
	}
	if hasher == nil {
		return nil, errors.New(errors.CodeInternal, "users: hasher is required")
	}
	if tokens == nil {
		return nil, errors.New(errors.CodeInternal, "users: token manager is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "users: logger is required")
	}
	return &service{repo: repo, hasher: hasher, tokens: tokens, log: log}, nil
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         enums.UserRoleCustomer,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "user registered")
	return s.session(user)
}

func (s *service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeNotFound {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
	}

	return s.session(user)
}

func (s *service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Mint(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Address != nil {
		user.Address = *in.Address
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) ListCustomers(ctx context.Context, p pagination.Params) (pagination.Page[models.User], error) {
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return pagination.Page[models.User]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}
