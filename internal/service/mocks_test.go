package service_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field — set only the ones your test needs; calling an unset
// method panics, which surfaces unexpected repo traffic immediately.

type mockBookingRepo struct {
	create        func(ctx context.Context, b domain.Booking, entry domain.HistoryEntry) (domain.Booking, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	list          func(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	listByRider   func(ctx context.Context, riderID uuid.UUID) ([]domain.Booking, error)
	history       func(ctx context.Context, bookingID uuid.UUID) ([]domain.HistoryEntry, error)
	dispatch      func(ctx context.Context, id uuid.UUID, riderIDs []uuid.UUID, finalPrice float64, entry domain.HistoryEntry) (domain.Booking, error)
	accept        func(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error)
	reject        func(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error)
	updateStatus  func(ctx context.Context, id uuid.UUID, from, to domain.Status, riderID *uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error)
	cancel        func(ctx context.Context, id uuid.UUID, by domain.Role, reason string, allowed []domain.Status, entry domain.HistoryEntry) (domain.Booking, error)
	cancelByRider func(ctx context.Context, id, riderID uuid.UUID, cancelEntry, reopenEntry domain.HistoryEntry) (domain.Booking, error)
	overlapping   func(ctx context.Context, riderID uuid.UUID, pickup, end time.Time) ([]domain.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking, entry domain.HistoryEntry) (domain.Booking, error) {
	return m.create(ctx, b, entry)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	return m.list(ctx, f)
}
func (m *mockBookingRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]domain.Booking, error) {
	return m.listByRider(ctx, riderID)
}
func (m *mockBookingRepo) History(ctx context.Context, bookingID uuid.UUID) ([]domain.HistoryEntry, error) {
	return m.history(ctx, bookingID)
}
func (m *mockBookingRepo) Dispatch(ctx context.Context, id uuid.UUID, riderIDs []uuid.UUID, finalPrice float64, entry domain.HistoryEntry) (domain.Booking, error) {
	return m.dispatch(ctx, id, riderIDs, finalPrice, entry)
}
func (m *mockBookingRepo) Accept(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
	return m.accept(ctx, id, riderID, entry)
}
func (m *mockBookingRepo) Reject(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
	return m.reject(ctx, id, riderID, entry)
}
func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, riderID *uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
	return m.updateStatus(ctx, id, from, to, riderID, entry)
}
func (m *mockBookingRepo) Cancel(ctx context.Context, id uuid.UUID, by domain.Role, reason string, allowed []domain.Status, entry domain.HistoryEntry) (domain.Booking, error) {
	return m.cancel(ctx, id, by, reason, allowed, entry)
}
func (m *mockBookingRepo) CancelByRider(ctx context.Context, id, riderID uuid.UUID, cancelEntry, reopenEntry domain.HistoryEntry) (domain.Booking, error) {
	return m.cancelByRider(ctx, id, riderID, cancelEntry, reopenEntry)
}
func (m *mockBookingRepo) FindOverlapping(ctx context.Context, riderID uuid.UUID, pickup, end time.Time) ([]domain.Booking, error) {
	return m.overlapping(ctx, riderID, pickup, end)
}

var _ repo.BookingRepo = (*mockBookingRepo)(nil)

type mockRiderRepo struct {
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Rider, error)
	list           func(ctx context.Context) ([]domain.Rider, error)
	listCandidates func(ctx context.Context, pickup, end time.Time) ([]domain.Candidate, error)
	unapproved     func(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	setApproval    func(ctx context.Context, id uuid.UUID, approved bool) (domain.Rider, error)
}

func (m *mockRiderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	return m.getByID(ctx, id)
}
func (m *mockRiderRepo) List(ctx context.Context) ([]domain.Rider, error) {
	return m.list(ctx)
}
func (m *mockRiderRepo) ListCandidates(ctx context.Context, pickup, end time.Time) ([]domain.Candidate, error) {
	return m.listCandidates(ctx, pickup, end)
}
func (m *mockRiderRepo) Unapproved(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return m.unapproved(ctx, ids)
}
func (m *mockRiderRepo) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.Rider, error) {
	return m.setApproval(ctx, id, approved)
}

var _ repo.RiderRepo = (*mockRiderRepo)(nil)

type mockReviewRepo struct {
	create         func(ctx context.Context, review domain.Review, entry domain.HistoryEntry) (domain.Review, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Review, error)
	getByBookingID func(ctx context.Context, bookingID uuid.UUID) (domain.Review, error)
	list           func(ctx context.Context, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error)
	delete         func(ctx context.Context, id uuid.UUID) (domain.Rider, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, review domain.Review, entry domain.HistoryEntry) (domain.Review, error) {
	return m.create(ctx, review, entry)
}
func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	return m.getByID(ctx, id)
}
func (m *mockReviewRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (domain.Review, error) {
	return m.getByBookingID(ctx, bookingID)
}
func (m *mockReviewRepo) List(ctx context.Context, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error) {
	return m.list(ctx, f, page)
}
func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	return m.delete(ctx, id)
}

var _ repo.ReviewRepo = (*mockReviewRepo)(nil)

type mockCategoryRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error)
	list    func(ctx context.Context) ([]domain.VehicleCategory, error)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error) {
	return m.getByID(ctx, id)
}
func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	return m.list(ctx)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// discardLogger keeps test output clean.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passenger() domain.Actor { return domain.Actor{ID: uuid.New(), Role: domain.RolePassenger} }
func rider() domain.Actor     { return domain.Actor{ID: uuid.New(), Role: domain.RoleRider} }
func admin() domain.Actor     { return domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin} }
