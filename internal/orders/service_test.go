package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
)

type stubOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrderRepo) Create(_ context.Context, o *models.Order) error {
	s.orders[o.ID] = o
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderRepo) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.CheckoutSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, errors.New(errors.CodeNotFound, "order not found")
}

func (s *stubOrderRepo) List(_ context.Context, f ListFilter, p pagination.Params) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range s.orders {
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	o, ok := s.orders[id]
	if !ok {
		return errors.New(errors.CodeNotFound, "order not found")
	}
	o.Status = status
	return nil
}

func (s *stubOrderRepo) WithTx(_ *gorm.DB) Repository { return s }

func newTestService(t *testing.T) (Service, *stubOrderRepo) {
	t.Helper()
	repo := newStubOrderRepo()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, repo
}

func seedOrder(repo *stubOrderRepo, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	o := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		CheckoutSessionID: uuid.NewString(),
		Status:            status,
		Subtotal:          1000,
		Total:             1000,
	}
	repo.orders[o.ID] = o
	return o
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to enums.OrderStatus
		ok       bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusProcessing, true},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped, true},
		{enums.OrderStatusProcessing, enums.OrderStatusCancelled, true},
		{enums.OrderStatusProcessing, enums.OrderStatusDelivered, false},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{enums.OrderStatusDelivered, enums.OrderStatusPending, false},
		{enums.OrderStatusCancelled, enums.OrderStatusProcessing, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusHappyPath(t *testing.T) {
	svc, repo := newTestService(t)
	order := seedOrder(repo, uuid.New(), enums.OrderStatusPending)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
	assert.Equal(t, enums.OrderStatusProcessing, repo.orders[order.ID].Status)
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	svc, repo := newTestService(t)
	order := seedOrder(repo, uuid.New(), enums.OrderStatusDelivered)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing)
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.CodeOf(err))
	// Repo untouched.
	assert.Equal(t, enums.OrderStatusDelivered, repo.orders[order.ID].Status)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	svc, repo := newTestService(t)
	order := seedOrder(repo, uuid.New(), enums.OrderStatusPending)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatus("teleported"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestGetOrderOwnership(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()
	order := seedOrder(repo, owner, enums.OrderStatusPending)

	got, err := svc.GetOrder(context.Background(), order.ID, owner, enums.UserRoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// Another customer gets not-found, not forbidden.
	_, err = svc.GetOrder(context.Background(), order.ID, uuid.New(), enums.UserRoleCustomer)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))

	// Admins see everything.
	_, err = svc.GetOrder(context.Background(), order.ID, uuid.New(), enums.UserRoleAdmin)
	assert.NoError(t, err)
}

func TestCancelOwnOrderPendingOnly(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()

	pending := seedOrder(repo, owner, enums.OrderStatusPending)
	cancelled, err := svc.CancelOwnOrder(context.Background(), pending.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	shipped := seedOrder(repo, owner, enums.OrderStatusShipped)
	_, err = svc.CancelOwnOrder(context.Background(), shipped.ID, owner)
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.CodeOf(err))
}

func TestCancelOwnOrderWrongUser(t *testing.T) {
	svc, repo := newTestService(t)
	order := seedOrder(repo, uuid.New(), enums.OrderStatusPending)

	_, err := svc.CancelOwnOrder(context.Background(), order.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestListUserOrders(t *testing.T) {
	svc, repo := newTestService(t)
	owner := uuid.New()
	seedOrder(repo, owner, enums.OrderStatusPending)
	seedOrder(repo, owner, enums.OrderStatusShipped)
	seedOrder(repo, uuid.New(), enums.OrderStatusPending)

	page, err := svc.ListUserOrders(context.Background(), owner, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Items, 2)
}
