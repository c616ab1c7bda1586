package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/handler"
	"github.com/pkordes/ride-dispatch/internal/middleware"
	"github.com/pkordes/ride-dispatch/internal/service"
)

// Function-field test doubles for the servicer interfaces, mirroring the
// service layer's repo mocks. Only the booking, offer, and review servicers
// are mocked here; tests construct a Server with just what they exercise.

type mockBookingServicer struct {
	create           func(ctx context.Context, actor domain.Actor, input service.CreateBookingInput) (domain.Booking, error)
	getByID          func(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Booking, error)
	list             func(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error)
	listForPassenger func(ctx context.Context, actor domain.Actor, passengerID uuid.UUID) ([]domain.Booking, error)
	listForRider     func(ctx context.Context, actor domain.Actor, riderID uuid.UUID) ([]domain.Booking, error)
	history          func(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]domain.HistoryEntry, error)
	updateStatus     func(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.Status) (domain.Booking, error)
	cancel           func(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (domain.Booking, error)
}

func (m *mockBookingServicer) Create(ctx context.Context, actor domain.Actor, input service.CreateBookingInput) (domain.Booking, error) {
	return m.create(ctx, actor, input)
}
func (m *mockBookingServicer) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, actor, id)
}
func (m *mockBookingServicer) List(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error) {
	return m.list(ctx, actor, f)
}
func (m *mockBookingServicer) ListForPassenger(ctx context.Context, actor domain.Actor, passengerID uuid.UUID) ([]domain.Booking, error) {
	return m.listForPassenger(ctx, actor, passengerID)
}
func (m *mockBookingServicer) ListForRider(ctx context.Context, actor domain.Actor, riderID uuid.UUID) ([]domain.Booking, error) {
	return m.listForRider(ctx, actor, riderID)
}
func (m *mockBookingServicer) History(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]domain.HistoryEntry, error) {
	return m.history(ctx, actor, bookingID)
}
func (m *mockBookingServicer) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.Status) (domain.Booking, error) {
	return m.updateStatus(ctx, actor, id, to)
}
func (m *mockBookingServicer) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (domain.Booking, error) {
	return m.cancel(ctx, actor, id, reason)
}

var _ handler.BookingServicer = (*mockBookingServicer)(nil)

type mockOfferServicer struct {
	dispatch func(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, riderIDs []uuid.UUID, finalPrice float64) (domain.Booking, error)
	accept   func(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error)
	reject   func(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error)
}

func (m *mockOfferServicer) Dispatch(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, riderIDs []uuid.UUID, finalPrice float64) (domain.Booking, error) {
	return m.dispatch(ctx, actor, bookingID, riderIDs, finalPrice)
}
func (m *mockOfferServicer) Accept(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error) {
	return m.accept(ctx, actor, bookingID)
}
func (m *mockOfferServicer) Reject(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error) {
	return m.reject(ctx, actor, bookingID)
}

var _ handler.OfferServicer = (*mockOfferServicer)(nil)

type mockReviewServicer struct {
	submit       func(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, rating int, comment string) (domain.Review, error)
	get          func(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Review, error)
	getByBooking func(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Review, error)
	list         func(ctx context.Context, actor domain.Actor, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error)
	delete       func(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

func (m *mockReviewServicer) Submit(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, rating int, comment string) (domain.Review, error) {
	return m.submit(ctx, actor, bookingID, rating, comment)
}
func (m *mockReviewServicer) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Review, error) {
	return m.get(ctx, actor, id)
}
func (m *mockReviewServicer) GetByBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Review, error) {
	return m.getByBooking(ctx, actor, bookingID)
}
func (m *mockReviewServicer) List(ctx context.Context, actor domain.Actor, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error) {
	return m.list(ctx, actor, f, page)
}
func (m *mockReviewServicer) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	return m.delete(ctx, actor, id)
}

var _ handler.ReviewServicer = (*mockReviewServicer)(nil)

// newTestRouter mounts the server's routes behind a middleware that injects
// the given actor, standing in for the auth layer.
func newTestRouter(server *handler.Server, actor domain.Actor) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})
	server.Routes(r)
	return r
}

// do executes a request against the router and returns the recorder.
func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
