package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// Claims is the JWT payload for authenticated sessions.
type Claims struct {
	UserID uuid.UUID      `json:"uid"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
