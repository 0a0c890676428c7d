package models

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a storefront hero slide managed from the back office.
type Banner struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string    `gorm:"not null" json:"title"`
	Subtitle string    `json:"subtitle"`
	ImageURL string    `gorm:"not null" json:"image_url"`
	LinkURL  string    `json:"link_url"`
	Position int       `gorm:"not null;default:0" json:"position"`
	Active   bool      `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Banner) TableName() string { return "banners" }
