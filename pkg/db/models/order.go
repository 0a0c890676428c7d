package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// Order is a completed checkout. CheckoutSessionID carries a unique
// constraint so reconciling the same payment session twice can never
// create a second order.
type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CheckoutSessionID string `gorm:"uniqueIndex;not null" json:"checkout_session_id"`

	Status enums.OrderStatus `gorm:"not null;default:pending" json:"status"`

	// Amounts are integer cents. Total is what the provider charged.
	Subtotal int64 `gorm:"not null" json:"subtotal"`
	Discount int64 `gorm:"not null;default:0" json:"discount"`
	Total    int64 `gorm:"not null" json:"total"`

	CouponCode      string        `json:"coupon_code,omitempty"`
	Currency        string        `gorm:"not null;default:usd" json:"currency"`
	ShippingAddress types.Address `gorm:"type:jsonb" json:"shipping_address"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots a cart line at purchase time so later catalog
// edits never rewrite order history.
type OrderItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`

	ProductID    uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Name         string    `gorm:"not null" json:"name"`
	VariantLabel string    `json:"variant_label,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`

	UnitPrice int64 `gorm:"not null" json:"unit_price"`
	Quantity  int   `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }
