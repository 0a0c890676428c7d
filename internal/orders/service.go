// Package orders owns order history and the status lifecycle. Orders
// are created by the checkout reconciler, never directly through this
// service.
package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

// allowedTransitions is the full status graph. Delivered and cancelled
// are terminal.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Service interface {
	// GetOrder enforces ownership: customers only see their own
	// orders, admins see everything.
	GetOrder(ctx context.Context, id, requesterID uuid.UUID, role enums.UserRole) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, p pagination.Params) (pagination.Page[models.Order], error)
	ListAllOrders(ctx context.Context, status *enums.OrderStatus, p pagination.Params) (pagination.Page[models.Order], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	CancelOwnOrder(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "orders: repo is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "orders: logger is required")
	}
	return &service{repo: repo, log: log}, nil
}

func (s *service) GetOrder(ctx context.Context, id, requesterID uuid.UUID, role enums.UserRole) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != enums.UserRoleAdmin && order.UserID != requesterID {
		// Not-found rather than forbidden, so order ids do not leak.
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, p pagination.Params) (pagination.Page[models.Order], error) {
	items, total, err := s.repo.List(ctx, ListFilter{UserID: &userID}, p)
	if err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s *service) ListAllOrders(ctx context.Context, status *enums.OrderStatus, p pagination.Params) (pagination.Page[models.Order], error) {
	items, total, err := s.repo.List(ctx, ListFilter{Status: status}, p)
	if err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, status) {
		return nil, errors.New(errors.CodeStateConflict, "order cannot move to that status").
			WithDetails(map[string]string{"from": string(order.Status), "to": string(status)})
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	ctx = s.log.WithFields(ctx, map[string]any{
		"order_id": id.String(),
		"status":   string(status),
	})
	s.log.Info(ctx, "order status updated")
	return order, nil
}

// CancelOwnOrder lets a customer cancel an order that has not started
// fulfillment. Anything past pending needs support.
func (s *service) CancelOwnOrder(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, errors.New(errors.CodeStateConflict, "only pending orders can be cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, id, enums.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = enums.OrderStatusCancelled
	return order, nil
}
