// Package checkout orchestrates payment sessions and their
// reconciliation into orders. Reconciliation is idempotent: the same
// provider session can be confirmed any number of times and yields
// exactly one order.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/internal/cart"
	"github.com/greenbasket/greenbasket-backend/internal/orders"
	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
	"github.com/greenbasket/greenbasket-backend/pkg/money"
	"github.com/greenbasket/greenbasket-backend/pkg/stripe"
)

const (
	metaUserID      = "user_id"
	metaCartSession = "cart_session_id"
	metaCouponCode  = "coupon_code"
	metaSubtotal    = "subtotal"
	metaDiscount    = "discount"
	metaItems       = "items"
)

// checkoutItem is one cart line frozen into session metadata when
// checkout begins. Reconciliation rebuilds the order from this
// snapshot, never from the live cart, so mutating the cart while the
// payment page is open cannot change what gets recorded.
type checkoutItem struct {
	ProductID    uuid.UUID `json:"pid"`
	Name         string    `json:"n"`
	VariantLabel string    `json:"v,omitempty"`
	ImageURL     string    `json:"img,omitempty"`
	UnitPrice    int64     `json:"up"`
	Quantity     int       `json:"q"`
}

// snapshot is the order-relevant state parsed back out of session
// metadata at reconcile time.
type snapshot struct {
	items    []checkoutItem
	subtotal int64
	discount int64
	coupon   string
}

// CartAccess is the slice of the cart store checkout needs.
type CartAccess interface {
	Get(ctx context.Context, sessionID string) (cart.View, error)
	Clear(ctx context.Context, sessionID string) error
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type BeginResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Total     int64  `json:"total"`
}

type ReconcileResult struct {
	Order *models.Order `json:"order"`
	// AlreadyProcessed means the session had been reconciled before
	// and the existing order is returned.
	AlreadyProcessed bool `json:"already_processed"`
}

type Service interface {
	// BeginCheckout opens a payment session for the user's cart. A
	// provider failure leaves the cart exactly as it was.
	BeginCheckout(ctx context.Context, userID uuid.UUID, cartSessionID string) (*BeginResult, error)
	// Reconcile turns a completed payment session into an order.
	Reconcile(ctx context.Context, userID uuid.UUID, providerSessionID, cartSessionID string) (*ReconcileResult, error)
}

type service struct {
	carts    CartAccess
	orders   orders.Repository
	users    users.Repository
	provider stripe.CheckoutProvider
	tx       TxRunner
	cfg      config.CheckoutConfig
	metrics  *metrics.Registry
	log      *logger.Logger
	now      func() time.Time
}

func NewService(
	carts CartAccess,
	orderRepo orders.Repository,
	userRepo users.Repository,
	provider stripe.CheckoutProvider,
	tx TxRunner,
	cfg config.CheckoutConfig,
	reg *metrics.Registry,
	log *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: cart access is required")
	}
	if orderRepo == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: order repo is required")
	}
	if userRepo == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: user repo is required")
	}
	if provider == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: payment provider is required")
	}
	if tx == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: tx runner is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "checkout: logger is required")
	}
	return &service{
		carts:    carts,
		orders:   orderRepo,
		users:    userRepo,
		provider: provider,
		tx:       tx,
		cfg:      cfg,
		metrics:  reg,
		log:      log,
		now:      time.Now,
	}, nil
}

func (s *service) BeginCheckout(ctx context.Context, userID uuid.UUID, cartSessionID string) (*BeginResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Address.IsZero() {
		return nil, errors.New(errors.CodeValidation, "a shipping address is required before checkout")
	}

	view, err := s.carts.Get(ctx, cartSessionID)
	if err != nil {
		return nil, err
	}
	if view.Empty() {
		return nil, errors.New(errors.CodeValidation, "cart is empty")
	}

	items := make([]checkoutItem, 0, len(view.Lines))
	for _, l := range view.Lines {
		items = append(items, checkoutItem{
			ProductID:    l.ProductID,
			Name:         l.Name,
			VariantLabel: l.VariantLabel,
			ImageURL:     l.ImageURL,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
		})
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "snapshot cart lines")
	}

	in := stripe.CreateSessionInput{
		Currency:   s.cfg.Currency,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
		LineItems:  buildLineItems(view),
		Metadata: map[string]string{
			metaUserID:      userID.String(),
			metaCartSession: cartSessionID,
			metaCouponCode:  view.Discount.Code,
			metaSubtotal:    strconv.FormatInt(view.Subtotal, 10),
			metaDiscount:    strconv.FormatInt(view.Discount.Amount, 10),
			metaItems:       string(payload),
		},
	}

	session, err := s.provider.CreateCheckoutSession(ctx, in)
	if err != nil {
		// The cart was only read, so the customer can retry as-is.
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CheckoutsStarted.Inc()
	}
	ctx = s.log.WithCheckoutSession(ctx, session.ID)
	s.log.Info(ctx, "checkout session created")

	return &BeginResult{SessionID: session.ID, URL: session.URL, Total: view.Total}, nil
}

// buildLineItems prices the provider lines. With no discount each cart
// line maps one to one; an applied coupon collapses the cart into a
// single discounted line because the provider has no order-level
// discount field.
func buildLineItems(view cart.View) []stripe.LineItem {
	if view.Discount.Amount == 0 {
		items := make([]stripe.LineItem, 0, len(view.Lines))
		for _, l := range view.Lines {
			name := l.Name
			if l.VariantLabel != "" {
				name = fmt.Sprintf("%s (%s)", l.Name, l.VariantLabel)
			}
			items = append(items, stripe.LineItem{
				Name:       name,
				UnitAmount: l.UnitPrice,
				Quantity:   int64(l.Quantity),
			})
		}
		return items
	}

	return []stripe.LineItem{{
		Name:       fmt.Sprintf("Order total (%s applied, %s off)", view.Discount.Code, money.Format(view.Discount.Amount)),
		UnitAmount: view.Total,
		Quantity:   1,
	}}
}

func (s *service) Reconcile(ctx context.Context, userID uuid.UUID, providerSessionID, cartSessionID string) (*ReconcileResult, error) {
	ctx = s.log.WithCheckoutSession(ctx, providerSessionID)

	// Fast path: a previous confirmation already produced the order.
	// Still the caller's order only.
	if existing, err := s.orders.FindBySessionID(ctx, providerSessionID); err == nil {
		if existing.UserID != userID {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		s.countDedup()
		s.clearCart(ctx, cartSessionID)
		return &ReconcileResult{Order: existing, AlreadyProcessed: true}, nil
	} else if errors.CodeOf(err) != errors.CodeNotFound {
		return nil, err
	}

	session, err := s.provider.RetrieveCheckoutSession(ctx, providerSessionID)
	if err != nil {
		s.countFailure(errors.CodeDependency)
		return nil, err
	}

	if !session.Paid() {
		s.countFailure(errors.CodePaymentUnconfirmed)
		return nil, errors.New(errors.CodePaymentUnconfirmed, "payment not confirmed yet")
	}

	if session.Metadata[metaUserID] != userID.String() {
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}

	snap, err := parseSnapshot(session.Metadata)
	if err != nil {
		// Paid but nothing to build the order from. The money moved,
		// so this is the loud incomplete-data error, not a validation
		// failure.
		s.countFailure(errors.CodeOrderDataIncomplete)
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.countFailure(errors.CodeOf(err))
		return nil, err
	}

	order := s.buildOrder(userID, providerSessionID, session, snap, user)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.users.WithTx(tx).IncrementOrderStats(ctx, userID, order.Total, s.now())
	})
	if err != nil {
		// Lost the insert race to a concurrent confirmation. The
		// winner's order is the order.
		if errors.Is(err, orders.ErrDuplicateSession) {
			existing, findErr := s.orders.FindBySessionID(ctx, providerSessionID)
			if findErr != nil {
				return nil, findErr
			}
			if existing.UserID != userID {
				return nil, errors.New(errors.CodeNotFound, "order not found")
			}
			s.countDedup()
			return &ReconcileResult{Order: existing, AlreadyProcessed: true}, nil
		}
		s.countFailure(errors.CodeOf(err))
		return nil, err
	}

	s.clearCart(ctx, cartSessionID)

	if s.metrics != nil {
		s.metrics.OrdersReconciled.Inc()
	}
	s.log.Info(ctx, "order reconciled")
	return &ReconcileResult{Order: order}, nil
}

// parseSnapshot extracts the frozen checkout state from session
// metadata. Any gap means the payment went through without the data
// needed to record it, which needs a human.
func parseSnapshot(metadata map[string]string) (snapshot, error) {
	var snap snapshot

	raw, ok := metadata[metaItems]
	if !ok || raw == "" {
		return snap, errors.New(errors.CodeOrderDataIncomplete, "payment succeeded but order data is incomplete")
	}
	if err := json.Unmarshal([]byte(raw), &snap.items); err != nil || len(snap.items) == 0 {
		return snap, errors.New(errors.CodeOrderDataIncomplete, "payment succeeded but order data is incomplete")
	}

	subtotal, err := strconv.ParseInt(metadata[metaSubtotal], 10, 64)
	if err != nil {
		return snap, errors.New(errors.CodeOrderDataIncomplete, "payment succeeded but order data is incomplete")
	}
	discount, err := strconv.ParseInt(metadata[metaDiscount], 10, 64)
	if err != nil {
		return snap, errors.New(errors.CodeOrderDataIncomplete, "payment succeeded but order data is incomplete")
	}

	snap.subtotal = subtotal
	snap.discount = discount
	snap.coupon = metadata[metaCouponCode]
	return snap, nil
}

// clearCart is best effort. A cart that fails to clear resolves on the
// next reconcile, which lands on the fast path and tries again.
func (s *service) clearCart(ctx context.Context, cartSessionID string) {
	if err := s.carts.Clear(ctx, cartSessionID); err != nil {
		s.log.Warn(ctx, "failed to clear cart after reconciliation")
	}
}

func (s *service) buildOrder(userID uuid.UUID, sessionID string, session *stripe.CheckoutSession, snap snapshot, user *models.User) *models.Order {
	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		CheckoutSessionID: sessionID,
		Status:            enums.OrderStatusPending,
		Subtotal:          snap.subtotal,
		Discount:          snap.discount,
		Total:             session.AmountTotal,
		CouponCode:        snap.coupon,
		Currency:          session.Currency,
		ShippingAddress:   user.Address,
	}
	if order.Currency == "" {
		order.Currency = s.cfg.Currency
	}

	for _, it := range snap.items {
		order.Items = append(order.Items, models.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    it.ProductID,
			Name:         it.Name,
			VariantLabel: it.VariantLabel,
			ImageURL:     it.ImageURL,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
		})
	}
	return order
}

func (s *service) countDedup() {
	if s.metrics != nil {
		s.metrics.OrdersDeduplicated.Inc()
	}
}

func (s *service) countFailure(code errors.Code) {
	if s.metrics != nil {
		s.metrics.ReconcileFailures.WithLabelValues(string(code)).Inc()
	}
}
