// Package cart implements the session-keyed cart store. Every
// mutation rewrites storage and recomputes the priced view, including
// the coupon discount, so clients always see totals the backend
// stands behind.
package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/internal/discount"
	"github.com/greenbasket/greenbasket-backend/internal/pricing"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// View is the priced cart snapshot returned from every operation.
// Total is Subtotal minus the applied discount, floored at zero by the
// resolver's clamp.
type View struct {
	Lines            []pricing.Line  `json:"lines"`
	Subtotal         int64           `json:"subtotal"`
	OriginalSubtotal int64           `json:"original_subtotal"`
	Savings          int64           `json:"savings"`
	Discount         discount.Result `json:"discount"`
	Total            int64           `json:"total"`
}

func (v View) Empty() bool {
	return len(v.Lines) == 0
}

// DiscountResolver recomputes the coupon discount after each mutation.
type DiscountResolver interface {
	Resolve(ctx context.Context, code string, lines []pricing.Line) (discount.Result, error)
}

type Store struct {
	storage  Storage
	resolver DiscountResolver
	log      *logger.Logger
}

func NewStore(storage Storage, resolver DiscountResolver, log *logger.Logger) (*Store, error) {
	if storage == nil {
		return nil, errors.New(errors.CodeInternal, "cart: storage is required")
	}
	if resolver == nil {
		return nil, errors.New(errors.CodeInternal, "cart: resolver is required")
	}
	if log == nil {
		return nil, errors.New(errors.CodeInternal, "cart: logger is required")
	}
	return &Store{storage: storage, resolver: resolver, log: log}, nil
}

// Get returns the current priced view without mutating anything.
func (s *Store) Get(ctx context.Context, sessionID string) (View, error) {
	lines, coupon, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, lines, coupon)
}

// AddLine merges line into the cart. An existing position with the
// same product and variant label absorbs the quantity instead of
// creating a duplicate row.
func (s *Store) AddLine(ctx context.Context, sessionID string, line pricing.Line) (View, error) {
	if line.Quantity <= 0 {
		return View{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}

	lines, coupon, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	merged := false
	for i := range lines {
		if sameLine(lines[i], line.ProductID, line.VariantLabel) {
			lines[i].Quantity += line.Quantity
			// Refresh the snapshot fields so a repriced product shows
			// its current price on the next add.
			lines[i].UnitPrice = line.UnitPrice
			lines[i].OriginalPrice = line.OriginalPrice
			lines[i].Name = line.Name
			lines[i].ImageURL = line.ImageURL
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}

	return s.persist(ctx, sessionID, lines, coupon)
}

// SetQuantity replaces a position's quantity. Zero or negative removes
// the position.
func (s *Store) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, variantLabel string, quantity int) (View, error) {
	lines, coupon, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	found := false
	next := lines[:0]
	for _, l := range lines {
		if sameLine(l, productID, variantLabel) {
			found = true
			if quantity <= 0 {
				continue
			}
			l.Quantity = quantity
		}
		next = append(next, l)
	}
	if !found {
		return View{}, errors.New(errors.CodeNotFound, "item not in cart")
	}

	return s.persist(ctx, sessionID, next, coupon)
}

// RemoveLine drops a position from the cart.
func (s *Store) RemoveLine(ctx context.Context, sessionID string, productID uuid.UUID, variantLabel string) (View, error) {
	return s.SetQuantity(ctx, sessionID, productID, variantLabel, 0)
}

// ApplyCoupon stores the code and reprices. A code that does not
// resolve still comes back in the view with Applied false so the
// client can tell the customer.
func (s *Store) ApplyCoupon(ctx context.Context, sessionID, code string) (View, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return View{}, errors.New(errors.CodeValidation, "coupon code is required")
	}

	lines, _, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	if len(lines) == 0 {
		return View{}, errors.New(errors.CodeValidation, "cannot apply a coupon to an empty cart")
	}

	return s.persist(ctx, sessionID, lines, code)
}

// RemoveCoupon clears the applied code.
func (s *Store) RemoveCoupon(ctx context.Context, sessionID string) (View, error) {
	lines, _, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.persist(ctx, sessionID, lines, "")
}

// Clear empties the cart and coupon in one shot.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.storage.Clear(ctx, sessionID)
}

// persist writes the new state and returns the recomputed view. An
// emptied cart also drops its coupon so the next item starts clean.
func (s *Store) persist(ctx context.Context, sessionID string, lines []pricing.Line, coupon string) (View, error) {
	if len(lines) == 0 {
		coupon = ""
	}
	if err := s.storage.SaveLines(ctx, sessionID, lines); err != nil {
		return View{}, err
	}
	if err := s.storage.SaveCoupon(ctx, sessionID, coupon); err != nil {
		return View{}, err
	}
	return s.view(ctx, lines, coupon)
}

func (s *Store) view(ctx context.Context, lines []pricing.Line, coupon string) (View, error) {
	res, err := s.resolver.Resolve(ctx, coupon, lines)
	if err != nil {
		return View{}, err
	}

	subtotal := pricing.Subtotal(lines)
	if lines == nil {
		lines = []pricing.Line{}
	}
	return View{
		Lines:            lines,
		Subtotal:         subtotal,
		OriginalSubtotal: pricing.OriginalSubtotal(lines),
		Savings:          pricing.Savings(lines),
		Discount:         res,
		Total:            subtotal - res.Amount,
	}, nil
}

func sameLine(l pricing.Line, productID uuid.UUID, variantLabel string) bool {
	return l.ProductID == productID && l.VariantLabel == variantLabel
}
