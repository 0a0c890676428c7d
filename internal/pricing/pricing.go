// Package pricing holds the cart arithmetic shared by the cart store,
// discount resolver and checkout service. All amounts are integer
// cents.
package pricing

import (
	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/money"
)

// Line is one priced cart position. UnitPrice is what the customer
// pays per unit; OriginalPrice, when set above UnitPrice, is the
// pre-markdown price used for the savings display.
type Line struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	VariantLabel  string    `json:"variant_label,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	UnitPrice     int64     `json:"unit_price"`
	OriginalPrice *int64    `json:"original_price,omitempty"`
	Quantity      int       `json:"quantity"`
}

// Total is the payable amount for the line. A line with a non-positive
// quantity or unit price is malformed and contributes nothing.
func (l Line) Total() int64 {
	if l.Quantity <= 0 || l.UnitPrice <= 0 {
		return 0
	}
	return l.UnitPrice * int64(l.Quantity)
}

// OriginalUnit is the pre-markdown unit price. An original price below
// the current price would show negative savings, so it is floored at
// the current price.
func (l Line) OriginalUnit() int64 {
	if l.OriginalPrice != nil && *l.OriginalPrice > l.UnitPrice {
		return *l.OriginalPrice
	}
	return l.UnitPrice
}

// OriginalTotal is the pre-markdown amount for the line, with the same
// malformed-line guard as Total.
func (l Line) OriginalTotal() int64 {
	if l.Quantity <= 0 || l.UnitPrice <= 0 {
		return 0
	}
	return l.OriginalUnit() * int64(l.Quantity)
}

// Subtotal sums the payable line totals.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Total()
	}
	return sum
}

// OriginalSubtotal sums the pre-markdown line totals.
func OriginalSubtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.OriginalTotal()
	}
	return sum
}

// Savings is the markdown amount across the cart, never negative.
func Savings(lines []Line) int64 {
	return money.ClampNonNegative(OriginalSubtotal(lines) - Subtotal(lines))
}
