package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, honoring one supplied by the
// caller, and threads it through the response and the logger.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := withRequestID(r.Context(), id)
			ctx = log.WithRequestID(ctx, id)

			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
