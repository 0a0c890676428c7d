package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

type contextKey string

const (
	ctxKeyRequestID   contextKey = "request_id"
	ctxKeyUserID      contextKey = "user_id"
	ctxKeyUserRole    contextKey = "user_role"
	ctxKeyCartSession contextKey = "cart_session"
)

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func withUser(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	return context.WithValue(ctx, ctxKeyUserRole, role)
}

// UserIDFrom returns the authenticated user, or false when the request
// is anonymous.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(uuid.UUID)
	return id, ok
}

func RoleFrom(ctx context.Context) enums.UserRole {
	role, _ := ctx.Value(ctxKeyUserRole).(enums.UserRole)
	return role
}

func withCartSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeyCartSession, sessionID)
}

// CartSessionFrom returns the browsing session id set by the cart
// session middleware.
func CartSessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyCartSession).(string)
	return id
}
