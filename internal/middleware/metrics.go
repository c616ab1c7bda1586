package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/ride-dispatch/internal/observability"
)

// NewMetrics returns a middleware recording per-request Prometheus counters
// and latency histograms. Labels are method and status only — paths contain
// booking UUIDs and would explode cardinality.
func NewMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := strconv.Itoa(ww.Status())
			observability.HTTPRequestsTotal.WithLabelValues(r.Method, status).Inc()
			observability.HTTPRequestDuration.WithLabelValues(r.Method, status).
				Observe(time.Since(start).Seconds())
		})
	}
}
