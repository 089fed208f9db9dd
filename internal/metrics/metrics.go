// Package metrics exposes Prometheus instrumentation for the split engine
// and the HTTP edge.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SplitsComputed counts full pipeline runs, labeled by mode
	// ("itemized" or "equal").
	SplitsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fairsplit_splits_computed_total",
		Help: "Number of split computations performed.",
	}, []string{"mode"})

	// ReconciliationFailures counts exact-sum invariant violations. This
	// should stay at zero; any increment is a programming defect.
	ReconciliationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fairsplit_reconciliation_failures_total",
		Help: "Number of split computations whose rounding pass could not reconcile.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fairsplit_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency and status for every route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpDuration.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
