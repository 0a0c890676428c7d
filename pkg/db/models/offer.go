package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// Offer is a coupon-code discount. Scope decides whether Value applies
// to the whole cart subtotal or per matching product line.
type Offer struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string             `gorm:"uniqueIndex;not null" json:"code"`
	Description string             `json:"description"`
	Scope       enums.OfferScope   `gorm:"not null" json:"scope"`
	Type        enums.DiscountType `gorm:"not null" json:"type"`

	// Value is a percentage (0-100) for percentage offers, cents for
	// fixed offers.
	Value float64 `gorm:"not null" json:"value"`

	// ProductIDs limits product-scoped offers to these products. Empty
	// for cart-scoped offers.
	ProductIDs pq.StringArray `gorm:"type:text[]" json:"product_ids"`

	Active    bool       `gorm:"not null;default:true" json:"active"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Offer) TableName() string { return "offers" }

// Live reports whether the offer can be applied at the given instant.
func (o Offer) Live(now time.Time) bool {
	if !o.Active {
		return false
	}
	if o.StartsAt != nil && now.Before(*o.StartsAt) {
		return false
	}
	if o.ExpiresAt != nil && now.After(*o.ExpiresAt) {
		return false
	}
	return true
}

// AppliesTo reports whether a product-scoped offer targets productID.
func (o Offer) AppliesTo(productID uuid.UUID) bool {
	id := productID.String()
	for _, p := range o.ProductIDs {
		if p == id {
			return true
		}
	}
	return false
}
