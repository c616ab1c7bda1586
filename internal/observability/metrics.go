// Package observability holds the Prometheus metrics exported at /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "bookings_created_total",
		Help: "Total bookings created",
	})
	OffersDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "offers_dispatched_total",
		Help: "Total offer rounds dispatched to riders",
	})
	OffersAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "offers_accepted_total",
		Help: "Total offers won by a rider",
	})
	// OfferConflictsTotal counts accept attempts that lost the
	// first-come-first-served race or hit an overlapping booking.
	OfferConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "offer_conflicts_total",
		Help: "Accept attempts rejected by the conditional update",
	})
	BookingsCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "bookings_cancelled_total",
		Help: "Total cancellations by cancelling role",
	}, []string{"by"})
	ReviewsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "reviews_submitted_total",
		Help: "Total reviews submitted",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "http_requests_total",
		Help: "Total HTTP requests handled",
	}, []string{"method", "status"})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ride_dispatch", Name: "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)
