// Package metrics registers the Prometheus collectors exposed on
// /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CheckoutsStarted    prometheus.Counter
	OrdersReconciled    prometheus.Counter
	OrdersDeduplicated  prometheus.Counter
	ReconcileFailures   *prometheus.CounterVec
	CouponApplications  *prometheus.CounterVec
	CartMutations       *prometheus.CounterVec
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbasket_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greenbasket_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CheckoutsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenbasket_checkouts_started_total",
			Help: "Checkout sessions created with the payment provider.",
		}),
		OrdersReconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenbasket_orders_reconciled_total",
			Help: "Orders created from confirmed checkout sessions.",
		}),
		OrdersDeduplicated: factory.NewCounter(prometheus.CounterOpts{
			Name: "greenbasket_orders_deduplicated_total",
			Help: "Reconciliations that returned an existing order.",
		}),
		ReconcileFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbasket_reconcile_failures_total",
			Help: "Reconciliation failures by error code.",
		}, []string{"code"}),
		CouponApplications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbasket_coupon_applications_total",
			Help: "Coupon apply attempts by outcome.",
		}, []string{"outcome"}),
		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbasket_cart_mutations_total",
			Help: "Cart mutations by operation.",
		}, []string{"op"}),
	}
}

// Handler serves the scrape endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (r *Registry) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
