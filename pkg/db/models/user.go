package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         enums.UserRole `gorm:"not null;default:customer" json:"role"`
	Address      types.Address  `gorm:"type:jsonb" json:"address"`

	// Lifetime purchase stats, incremented inside the order
	// reconciliation transaction.
	OrderCount  int   `gorm:"not null;default:0" json:"order_count"`
	TotalSpent  int64 `gorm:"not null;default:0" json:"total_spent"`
	LastOrderAt *time.Time

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
