package middleware

import (
	"net/http"
	"strings"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/pkg/auth"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// Authenticate requires a valid bearer token and puts the user on the
// request context.
func Authenticate(tokens *auth.TokenManager, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				responses.WriteError(r.Context(), w, log, err)
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				responses.WriteError(r.Context(), w, log, err)
				return
			}

			ctx := withUser(r.Context(), claims.UserID, claims.Role)
			ctx = log.WithUserID(ctx, claims.UserID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New(errors.CodeUnauthorized, "missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New(errors.CodeUnauthorized, "malformed authorization header")
	}
	return token, nil
}
