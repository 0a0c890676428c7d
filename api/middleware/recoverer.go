package middleware

import (
	"fmt"
	"net/http"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// Recoverer converts handler panics into 500 responses instead of
// dropping the connection.
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err := errors.New(errors.CodeInternal, fmt.Sprintf("panic: %v", rec))
					responses.WriteError(r.Context(), w, log, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
