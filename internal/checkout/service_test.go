package checkout

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/internal/cart"
	"github.com/greenbasket/greenbasket-backend/internal/discount"
	"github.com/greenbasket/greenbasket-backend/internal/orders"
	"github.com/greenbasket/greenbasket-backend/internal/pricing"
	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/pagination"
	"github.com/greenbasket/greenbasket-backend/pkg/stripe"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// --- stubs ---

type stubCarts struct {
	view    cart.View
	cleared bool
}

func (s *stubCarts) Get(_ context.Context, _ string) (cart.View, error) { return s.view, nil }
func (s *stubCarts) Clear(_ context.Context, _ string) error {
	s.cleared = true
	return nil
}

type stubOrders struct {
	bySession map[string]*models.Order
	// hiddenFinds makes FindBySessionID miss this many times before
	// seeing stored orders, to exercise the insert race path.
	hiddenFinds int
	created     []*models.Order
}

func newStubOrders() *stubOrders {
	return &stubOrders{bySession: map[string]*models.Order{}}
}

func (s *stubOrders) Create(_ context.Context, o *models.Order) error {
	if _, ok := s.bySession[o.CheckoutSessionID]; ok {
		return orders.ErrDuplicateSession
	}
	s.bySession[o.CheckoutSessionID] = o
	s.created = append(s.created, o)
	return nil
}

func (s *stubOrders) GetByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return nil, errors.New(errors.CodeNotFound, "order not found")
}

func (s *stubOrders) FindBySessionID(_ context.Context, sessionID string) (*models.Order, error) {
	if s.hiddenFinds > 0 {
		s.hiddenFinds--
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	o, ok := s.bySession[sessionID]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	return o, nil
}

func (s *stubOrders) List(_ context.Context, _ orders.ListFilter, _ pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, _ uuid.UUID, _ enums.OrderStatus) error {
	return nil
}

func (s *stubOrders) WithTx(_ *gorm.DB) orders.Repository { return s }

type stubUsers struct {
	user       *models.User
	statsCalls int
	statsTotal int64
}

func (s *stubUsers) Create(_ context.Context, _ *models.User) error { return nil }
func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, errors.New(errors.CodeNotFound, "user not found")
	}
	return s.user, nil
}
func (s *stubUsers) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, errors.New(errors.CodeNotFound, "user not found")
}
func (s *stubUsers) Update(_ context.Context, _ *models.User) error { return nil }
func (s *stubUsers) IncrementOrderStats(_ context.Context, _ uuid.UUID, amount int64, _ time.Time) error {
	s.statsCalls++
	s.statsTotal += amount
	return nil
}
func (s *stubUsers) List(_ context.Context, _ pagination.Params) ([]models.User, int64, error) {
	return nil, 0, nil
}
func (s *stubUsers) WithTx(_ *gorm.DB) users.Repository { return s }

type stubProvider struct {
	created     []stripe.CreateSessionInput
	createErr   error
	session     *stripe.CheckoutSession
	retrieveErr error
	retrieved   int
}

func (s *stubProvider) CreateCheckoutSession(_ context.Context, in stripe.CreateSessionInput) (*stripe.CheckoutSession, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, in)
	return &stripe.CheckoutSession{ID: "cs_test_new", URL: "https://pay.example/cs_test_new"}, nil
}

func (s *stubProvider) RetrieveCheckoutSession(_ context.Context, _ string) (*stripe.CheckoutSession, error) {
	s.retrieved++
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	return s.session, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

// --- fixtures ---

type fixture struct {
	svc      Service
	carts    *stubCarts
	orders   *stubOrders
	users    *stubUsers
	provider *stubProvider
	userID   uuid.UUID
}

func cartView() cart.View {
	lines := []pricing.Line{
		{ProductID: uuid.New(), Name: "Apples", UnitPrice: 250, Quantity: 4},   // 1000
		{ProductID: uuid.New(), Name: "Oat Milk", UnitPrice: 500, Quantity: 3}, // 1500
	}
	return cart.View{
		Lines:            lines,
		Subtotal:         2500,
		OriginalSubtotal: 2500,
		Discount:         discount.Result{Code: "SAVE10", Amount: 250, Applied: true},
		Total:            2250,
	}
}

func newFixture(t *testing.T, view cart.View) *fixture {
	t.Helper()

	userID := uuid.New()
	f := &fixture{
		carts:  &stubCarts{view: view},
		orders: newStubOrders(),
		users: &stubUsers{user: &models.User{
			ID:      userID,
			Email:   "shopper@example.com",
			Address: types.Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		}},
		provider: &stubProvider{},
		userID:   userID,
	}

	svc, err := NewService(
		f.carts, f.orders, f.users, f.provider, stubTx{},
		config.CheckoutConfig{SuccessURL: "https://shop.example/success", CancelURL: "https://shop.example/cancel", Currency: "usd"},
		nil,
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// paidSession builds a completed session carrying the metadata
// BeginCheckout would have frozen for the fixture's cart.
func paidSession(f *fixture, sessionID string) *stripe.CheckoutSession {
	view := f.carts.view
	items := make([]checkoutItem, 0, len(view.Lines))
	for _, l := range view.Lines {
		items = append(items, checkoutItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	payload, _ := json.Marshal(items)
	return &stripe.CheckoutSession{
		ID:            sessionID,
		PaymentStatus: stripe.PaymentStatusPaid,
		AmountTotal:   view.Total,
		Currency:      "usd",
		Metadata: map[string]string{
			"user_id":         f.userID.String(),
			"cart_session_id": "sess-1",
			"coupon_code":     view.Discount.Code,
			"subtotal":        strconv.FormatInt(view.Subtotal, 10),
			"discount":        strconv.FormatInt(view.Discount.Amount, 10),
			"items":           string(payload),
		},
	}
}

// --- begin checkout ---

func TestBeginCheckout(t *testing.T) {
	f := newFixture(t, cartView())

	res, err := f.svc.BeginCheckout(context.Background(), f.userID, "sess-1")
	require.NoError(t, err)

	assert.Equal(t, "cs_test_new", res.SessionID)
	assert.Equal(t, "https://pay.example/cs_test_new", res.URL)
	assert.Equal(t, int64(2250), res.Total)

	require.Len(t, f.provider.created, 1)
	in := f.provider.created[0]
	assert.Equal(t, f.userID.String(), in.Metadata["user_id"])
	assert.Equal(t, "sess-1", in.Metadata["cart_session_id"])
	assert.Equal(t, "SAVE10", in.Metadata["coupon_code"])
	assert.Equal(t, "2500", in.Metadata["subtotal"])
	assert.Equal(t, "250", in.Metadata["discount"])

	var frozen []checkoutItem
	require.NoError(t, json.Unmarshal([]byte(in.Metadata["items"]), &frozen))
	require.Len(t, frozen, 2)
	assert.Equal(t, "Apples", frozen[0].Name)
	assert.Equal(t, int64(250), frozen[0].UnitPrice)
	assert.Equal(t, 4, frozen[0].Quantity)
}

func TestBeginCheckoutDiscountCollapsesLines(t *testing.T) {
	f := newFixture(t, cartView())

	_, err := f.svc.BeginCheckout(context.Background(), f.userID, "sess-1")
	require.NoError(t, err)

	in := f.provider.created[0]
	require.Len(t, in.LineItems, 1)
	assert.Equal(t, int64(2250), in.LineItems[0].UnitAmount)
	assert.Equal(t, int64(1), in.LineItems[0].Quantity)
}

func TestBeginCheckoutNoDiscountKeepsLines(t *testing.T) {
	view := cartView()
	view.Discount = discount.Zero("")
	view.Total = view.Subtotal
	f := newFixture(t, view)

	_, err := f.svc.BeginCheckout(context.Background(), f.userID, "sess-1")
	require.NoError(t, err)

	in := f.provider.created[0]
	require.Len(t, in.LineItems, 2)
	assert.Equal(t, int64(250), in.LineItems[0].UnitAmount)
	assert.Equal(t, int64(4), in.LineItems[0].Quantity)
}

func TestBeginCheckoutRequiresAddress(t *testing.T) {
	f := newFixture(t, cartView())
	f.users.user.Address = types.Address{}

	_, err := f.svc.BeginCheckout(context.Background(), f.userID, "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	assert.Empty(t, f.provider.created)
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, cart.View{})

	_, err := f.svc.BeginCheckout(context.Background(), f.userID, "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestBeginCheckoutProviderErrorLeavesCart(t *testing.T) {
	f := newFixture(t, cartView())
	f.provider.createErr = errors.New(errors.CodeDependency, "provider down")

	_, err := f.svc.BeginCheckout(context.Background(), f.userID, "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependency, errors.CodeOf(err))
	assert.False(t, f.carts.cleared)
}

// --- reconcile ---

func TestReconcileCreatesOrder(t *testing.T) {
	f := newFixture(t, cartView())
	f.provider.session = paidSession(f, "cs_done")

	res, err := f.svc.Reconcile(context.Background(), f.userID, "cs_done", "sess-1")
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.False(t, res.AlreadyProcessed)

	order := res.Order
	assert.Equal(t, "cs_done", order.CheckoutSessionID)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, int64(2500), order.Subtotal)
	assert.Equal(t, int64(250), order.Discount)
	assert.Equal(t, int64(2250), order.Total)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "1 Main St", order.ShippingAddress.Line1)

	assert.Equal(t, 1, f.users.statsCalls)
	assert.Equal(t, int64(2250), f.users.statsTotal)
	assert.True(t, f.carts.cleared)
}

func TestReconcileIdempotentFastPath(t *testing.T) {
	f := newFixture(t, cartView())
	existing := &models.Order{ID: uuid.New(), UserID: f.userID, CheckoutSessionID: "cs_done"}
	f.orders.bySession["cs_done"] = existing

	res, err := f.svc.Reconcile(context.Background(), f.userID, "cs_done", "sess-1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.Equal(t, existing.ID, res.Order.ID)
	// The provider is never consulted once the order exists, but a
	// cart left over from an earlier failed clear still gets emptied.
	assert.Zero(t, f.provider.retrieved)
	assert.Zero(t, f.users.statsCalls)
	assert.True(t, f.carts.cleared)
}

func TestReconcileFastPathOtherUsersOrder(t *testing.T) {
	f := newFixture(t, cartView())
	f.orders.bySession["cs_done"] = &models.Order{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		CheckoutSessionID: "cs_done",
		ShippingAddress:   types.Address{Line1: "9 Private Rd"},
	}

	_, err := f.svc.Reconcile(context.Background(), f.userID, "cs_done", "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
	assert.False(t, f.carts.cleared)
}

func TestReconcileInsertRace(t *testing.T) {
	f := newFixture(t, cartView())
	f.provider.session = paidSession(f, "cs_race")
	winner := &models.Order{ID: uuid.New(), UserID: f.userID, CheckoutSessionID: "cs_race"}
	f.orders.bySession["cs_race"] = winner
	// Miss the fast-path lookup so Create hits the unique constraint.
	f.orders.hiddenFinds = 1

	res, err := f.svc.Reconcile(context.Background(), f.userID, "cs_race", "sess-1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.Equal(t, winner.ID, res.Order.ID)
	assert.Zero(t, f.users.statsCalls)
}

func TestReconcileUnpaidSession(t *testing.T) {
	f := newFixture(t, cartView())
	f.provider.session = &stripe.CheckoutSession{
		ID:            "cs_open",
		PaymentStatus: "unpaid",
		Metadata:      map[string]string{"user_id": f.userID.String()},
	}

	_, err := f.svc.Reconcile(context.Background(), f.userID, "cs_open", "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodePaymentUnconfirmed, errors.CodeOf(err))
	assert.False(t, f.carts.cleared)
	assert.Empty(t, f.orders.created)
}

func TestReconcileForeignSession(t *testing.T) {
	f := newFixture(t, cartView())
	session := paidSession(f, "cs_foreign")
	session.Metadata["user_id"] = uuid.NewString()
	f.provider.session = session

	_, err := f.svc.Reconcile(context.Background(), f.userID, "cs_foreign", "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}

func TestReconcileSnapshotBeatsLiveCart(t *testing.T) {
	f := newFixture(t, cartView())
	f.provider.session = paidSession(f, "cs_swap")

	// Mutate the cart between payment and confirmation. The order must
	// record what was paid for, not what the cart holds now.
	f.carts.view = cart.View{
		Lines:    []pricing.Line{{ProductID: uuid.New(), Name: "Caviar", UnitPrice: 99900, Quantity: 10}},
		Subtotal: 999000,
		Total:    999000,
	}

	res, err := f.svc.Reconcile(context.Background(), f.userID, "cs_swap", "sess-1")
	require.NoError(t, err)

	order := res.Order
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Apples", order.Items[0].Name)
	assert.Equal(t, "Oat Milk", order.Items[1].Name)
	assert.Equal(t, int64(2500), order.Subtotal)
	assert.Equal(t, int64(2250), order.Total)
}

func TestReconcileMissingSnapshot(t *testing.T) {
	f := newFixture(t, cartView())
	session := paidSession(f, "cs_lost")
	delete(session.Metadata, "items")
	f.provider.session = session

	_, err := f.svc.Reconcile(context.Background(), f.userID, "cs_lost", "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeOrderDataIncomplete, errors.CodeOf(err))
	assert.Empty(t, f.orders.created)
	assert.False(t, f.carts.cleared)
}

func TestReconcileCorruptSnapshot(t *testing.T) {
	f := newFixture(t, cartView())
	session := paidSession(f, "cs_garbled")
	session.Metadata["subtotal"] = "not-a-number"
	f.provider.session = session

	_, err := f.svc.Reconcile(context.Background(), f.userID, "cs_garbled", "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeOrderDataIncomplete, errors.CodeOf(err))
	assert.Empty(t, f.orders.created)
}

func TestReconcileProviderError(t *testing.T) {
	f := newFixture(t, cartView())
	f.provider.retrieveErr = errors.New(errors.CodeDependency, "provider down")

	_, err := f.svc.Reconcile(context.Background(), f.userID, "cs_err", "sess-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependency, errors.CodeOf(err))
	assert.False(t, f.carts.cleared)
}
