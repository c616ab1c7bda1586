// Package handler implements the HTTP layer of the ride dispatch API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (booking.go, review.go, etc.) but share the same Server struct so
// they can access its dependencies. Handlers decode and validate the wire
// shape, pull the authenticated actor from the request context, and delegate
// every business decision to the service layer.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/service"
)

// BookingServicer defines the booking lifecycle operations the handlers
// depend on. Defining the interface here (in the consumer package) lets
// handler tests inject a mock without touching the database or service layer.
type BookingServicer interface {
	Create(ctx context.Context, actor domain.Actor, input service.CreateBookingInput) (domain.Booking, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Booking, error)
	List(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error)
	ListForPassenger(ctx context.Context, actor domain.Actor, passengerID uuid.UUID) ([]domain.Booking, error)
	ListForRider(ctx context.Context, actor domain.Actor, riderID uuid.UUID) ([]domain.Booking, error)
	History(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]domain.HistoryEntry, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.Status) (domain.Booking, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (domain.Booking, error)
}

// OfferServicer defines the dispatch-round operations.
type OfferServicer interface {
	Dispatch(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, riderIDs []uuid.UUID, finalPrice float64) (domain.Booking, error)
	Accept(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error)
	Reject(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error)
}

// ReviewServicer defines the review operations.
type ReviewServicer interface {
	Submit(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, rating int, comment string) (domain.Review, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Review, error)
	GetByBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Review, error)
	List(ctx context.Context, actor domain.Actor, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

// RiderServicer defines the rider profile operations.
type RiderServicer interface {
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Rider, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Rider, error)
	SetApproval(ctx context.Context, actor domain.Actor, id uuid.UUID, approved bool) (domain.Rider, error)
}

// AvailabilityServicer answers candidate queries for dispatch.
type AvailabilityServicer interface {
	CandidatesFor(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]domain.Candidate, error)
}

// CategoryServicer defines the vehicle category reads.
type CategoryServicer interface {
	Get(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error)
	List(ctx context.Context) ([]domain.VehicleCategory, error)
}

// Server holds the handlers' dependencies. Methods are in domain-specific
// files but all operate on this struct.
type Server struct {
	bookings     BookingServicer
	offers       OfferServicer
	reviews      ReviewServicer
	riders       RiderServicer
	availability AvailabilityServicer
	categories   CategoryServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(
	bookings BookingServicer,
	offers OfferServicer,
	reviews ReviewServicer,
	riders RiderServicer,
	availability AvailabilityServicer,
	categories CategoryServicer,
) *Server {
	return &Server{
		bookings:     bookings,
		offers:       offers,
		reviews:      reviews,
		riders:       riders,
		availability: availability,
		categories:   categories,
	}
}

// Routes mounts every authenticated API route onto r. Health, metrics, docs,
// and the auth middleware itself are wired in main, which keeps this function
// a pure map of the API surface.
func (s *Server) Routes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.CreateBooking)
		r.Get("/", s.ListBookings)

		r.Route("/{bookingID}", func(r chi.Router) {
			r.Get("/", s.GetBooking)
			r.Get("/history", s.GetBookingHistory)
			r.Patch("/status", s.UpdateBookingStatus)
			r.Post("/cancel", s.CancelBooking)

			r.Get("/candidates", s.ListCandidates)
			r.Post("/dispatch", s.DispatchOffer)
			r.Post("/accept", s.AcceptOffer)
			r.Post("/reject", s.RejectOffer)

			r.Post("/review", s.SubmitReview)
			r.Get("/review", s.GetBookingReview)
		})
	})

	r.Get("/passengers/{passengerID}/bookings", s.ListPassengerBookings)

	r.Route("/riders", func(r chi.Router) {
		r.Get("/", s.ListRiders)
		r.Route("/{riderID}", func(r chi.Router) {
			r.Get("/", s.GetRider)
			r.Get("/bookings", s.ListRiderBookings)
			r.Get("/reviews", s.ListRiderReviews)
			r.Patch("/approval", s.SetRiderApproval)
		})
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", s.ListReviews)
		r.Get("/{reviewID}", s.GetReview)
		r.Delete("/{reviewID}", s.DeleteReview)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.ListCategories)
		r.Get("/{categoryID}", s.GetCategory)
	})
}

// pathID parses a UUID path parameter, writing a 422 on failure.
// The bool reports whether the handler should continue.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondRequestError(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseTime parses an RFC 3339 timestamp from a request field.
func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
