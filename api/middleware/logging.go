package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
)

// Logging records one line per finished request and feeds the HTTP
// metrics. The route pattern, not the raw path, labels the metrics so
// cardinality stays bounded.
func Logging(log *logger.Logger, reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			if reg != nil {
				reg.ObserveHTTP(route, r.Method, ww.Status(), elapsed)
			}

			ctx := log.WithFields(r.Context(), map[string]any{
				"method":     r.Method,
				"route":      route,
				"status":     ww.Status(),
				"elapsed_ms": elapsed.Milliseconds(),
				"bytes":      ww.BytesWritten(),
			})
			log.Info(ctx, "request completed")
		})
	}
}
