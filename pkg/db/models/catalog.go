package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	LogoURL   string    `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Brand) TableName() string { return "brands" }

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `json:"description"`

	// Prices are integer cents. OriginalPrice, when set above Price,
	// is the pre-markdown price shown struck through.
	Price         int64  `gorm:"not null" json:"price"`
	OriginalPrice *int64 `json:"original_price,omitempty"`

	ImageURL string         `json:"image_url"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags"`
	Stock    int            `gorm:"not null;default:0" json:"stock"`
	Featured bool           `gorm:"not null;default:false" json:"featured"`
	Active   bool           `gorm:"not null;default:true" json:"active"`

	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID    uuid.UUID `gorm:"type:uuid;index" json:"brand_id"`
	Brand      *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// ProductVariant is a purchasable option of a product, e.g. "500g" or
// "1kg". A nil Price falls back to the product price.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Label     string    `gorm:"not null" json:"label"`
	Price     *int64    `json:"price,omitempty"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductVariant) TableName() string { return "product_variants" }
