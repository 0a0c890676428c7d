package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

const cartSessionCookie = "gb_cart_session"

// CartSession assigns each browser a cart session id in a cookie. The
// id keys the Redis-backed cart so anonymous visitors keep their cart
// across requests.
func CartSession(ttl time.Duration, secure bool, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(cartSessionCookie); err == nil && cookie.Value != "" {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = cookie.Value
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := withCartSession(r.Context(), sessionID)
			ctx = log.WithCartSession(ctx, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
