// Package stripe wraps the Stripe Checkout Sessions API behind a
// provider-neutral interface so checkout logic can be tested without
// network calls.
package stripe

import (
	"context"
	"strings"

	stripeapi "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
)

const (
	// PaymentStatusPaid is the payment status that allows
	// reconciliation to proceed.
	PaymentStatusPaid = "paid"
	// SessionStatusComplete marks a finished session whose payment
	// status may not read "paid", e.g. no_payment_required.
	SessionStatusComplete = "complete"
)

// LineItem is one priced line sent to the provider. UnitAmount is in
// minor units of Currency.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CreateSessionInput struct {
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the provider session view used by reconciliation.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// Paid accepts an explicit paid payment status or a complete session.
func (s *CheckoutSession) Paid() bool {
	if s == nil {
		return false
	}
	return s.PaymentStatus == PaymentStatusPaid || s.Status == SessionStatusComplete
}

// CheckoutProvider is the payment surface the checkout service depends on.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, in CreateSessionInput) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type Client struct {
	api *stripeclient.API
	env string
}

var _ CheckoutProvider = (*Client)(nil)

func NewClient(cfg config.StripeConfig) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New(errors.CodeInternal, "stripe api key is required")
	}

	env := cfg.Environment()
	switch env {
	case "test":
		if !strings.HasPrefix(key, "sk_test_") {
			return nil, errors.New(errors.CodeInternal, "test environment requires an sk_test key")
		}
	case "live":
		if !strings.HasPrefix(key, "sk_live_") {
			return nil, errors.New(errors.CodeInternal, "live environment requires an sk_live key")
		}
	default:
		return nil, errors.New(errors.CodeInternal, "stripe env must be test or live")
	}

	api := &stripeclient.API{}
	api.Init(key, nil)
	return &Client{api: api, env: env}, nil
}

func (c *Client) Environment() string {
	return c.env
}

func (c *Client) CreateCheckoutSession(ctx context.Context, in CreateSessionInput) (*CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(in.SuccessURL),
		CancelURL:  stripeapi.String(in.CancelURL),
	}
	params.Context = ctx

	for _, li := range in.LineItems {
		params.LineItems = append(params.LineItems, &stripeapi.CheckoutSessionLineItemParams{
			Quantity: stripeapi.Int64(li.Quantity),
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripeapi.String(in.Currency),
				UnitAmount: stripeapi.Int64(li.UnitAmount),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(li.Name),
				},
			},
		})
	}

	// Stripe sessions have no ad-hoc discount amount, so callers
	// allocate the discount into the line prices before building the
	// input. Discount rides along in metadata for the audit trail.
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "create checkout session")
	}
	return fromStripeSession(sess), nil
}

func (c *Client) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "retrieve checkout session")
	}
	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripeapi.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
		Metadata:      sess.Metadata,
	}
	return out
}
