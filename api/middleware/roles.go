package middleware

import (
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// RequireRole gates a subtree to users carrying one of the given
// roles. Must run after Authenticate.
func RequireRole(log *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[enums.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserIDFrom(r.Context()); !ok {
				responses.WriteError(r.Context(), w, log, errors.New(errors.CodeUnauthorized, "authentication required"))
				return
			}
			if _, ok := allowed[RoleFrom(r.Context())]; !ok {
				responses.WriteError(r.Context(), w, log, errors.New(errors.CodeForbidden, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
