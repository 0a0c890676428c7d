// Package discount turns a coupon code plus cart lines into a single
// discount amount. Resolution never fails the calling flow: a missing,
// expired or non-matching coupon resolves to a zero discount the
// caller can report.
package discount

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/greenbasket/greenbasket-backend/internal/pricing"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/money"
)

// OfferSource looks up a live offer by coupon code. A not-found error
// means the code is unusable, any other error is infrastructure.
type OfferSource interface {
	FindLiveByCode(ctx context.Context, code string) (*models.Offer, error)
}

// Result is the outcome of resolving a coupon against a cart.
type Result struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"`
	Applied     bool   `json:"applied"`
}

// Zero is the result for carts with no usable coupon.
func Zero(code string) Result {
	return Result{Code: code}
}

type Resolver struct {
	offers OfferSource
	log    *logger.Logger
}

func NewResolver(offers OfferSource, log *logger.Logger) (*Resolver, error) {
	if offers == nil {
		return nil, errors.New(errors.CodeInternal, "discount: offer source is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "discount: logger is required")
	}
	return &Resolver{offers: offers, log: log}, nil
}

// Resolve computes the discount for code against lines. An empty code
// or empty cart resolves to zero without a lookup.
func (r *Resolver) Resolve(ctx context.Context, code string, lines []pricing.Line) (Result, error) {
	if code == "" || len(lines) == 0 {
		return Zero(code), nil
	}

	offer, err := r.offers.FindLiveByCode(ctx, code)
	if err != nil {
		if typed := errors.As(err); typed != nil && typed.Code() == errors.CodeNotFound {
			r.log.Info(r.log.WithField(ctx, "coupon", code), "coupon did not resolve")
			return Zero(code), nil
		}
		return Zero(code), err
	}

	amount := Apply(offer, lines)
	return Result{
		Code:        code,
		Description: offer.Description,
		Amount:      amount,
		Applied:     amount > 0,
	}, nil
}

// Apply computes the raw discount amount for an offer against lines,
// clamped to the cart subtotal so the payable total never goes
// negative.
func Apply(offer *models.Offer, lines []pricing.Line) int64 {
	subtotal := pricing.Subtotal(lines)
	if subtotal <= 0 {
		return 0
	}

	var amount int64
	switch offer.Scope {
	case enums.OfferScopeCart:
		amount = cartAmount(offer, subtotal)
	case enums.OfferScopeProduct:
		amount = productAmount(offer, lines)
	}

	if amount > subtotal {
		amount = subtotal
	}
	return money.ClampNonNegative(amount)
}

func cartAmount(offer *models.Offer, subtotal int64) int64 {
	switch offer.Type {
	case enums.DiscountTypePercentage:
		return money.Percentage(subtotal, offer.Value)
	case enums.DiscountTypeFixed:
		return fixedCents(offer.Value)
	}
	return 0
}

// productAmount keeps the historical per-line semantics: percentage
// offers take a cut of each matching line total, fixed offers take the
// fixed value once per unit of each matching line.
func productAmount(offer *models.Offer, lines []pricing.Line) int64 {
	var amount int64
	for _, l := range lines {
		if !offer.AppliesTo(l.ProductID) {
			continue
		}
		switch offer.Type {
		case enums.DiscountTypePercentage:
			amount += money.Percentage(l.Total(), offer.Value)
		case enums.DiscountTypeFixed:
			amount += fixedCents(offer.Value) * int64(l.Quantity)
		}
	}
	return amount
}

func fixedCents(value float64) int64 {
	return decimal.NewFromFloat(value).Round(0).IntPart()
}
