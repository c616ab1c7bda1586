// Package service contains the business logic for the ride dispatch backend.
// Services enforce role guards and state-machine rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations. Every guard violation surfaces as a typed domain error and
// performs no mutation; the repos' conditional updates make the check-and-set
// atomic against concurrent requests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/notify"
	"github.com/pkordes/ride-dispatch/internal/observability"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// History event names, kept stable because dashboards and support tooling
// filter on them.
const (
	eventCreated      = "Booking created"
	eventOfferSent    = "Offer sent to riders"
	eventOfferAccept  = "Offer accepted"
	eventOfferReject  = "Offer rejected"
	eventStatusUpdate = "Status updated"
	eventCancelled    = "Booking cancelled"
	eventReopened     = "Booking reopened"
	eventReviewed     = "Review submitted"
)

// defaultCancelReason is stamped when the caller gives none.
const defaultCancelReason = "No reason provided"

// BookingService implements the booking lifecycle: creation, status
// transitions, and cancellation. Offer dispatching lives in OfferService.
type BookingService struct {
	bookings   repo.BookingRepo
	categories repo.CategoryRepo
	notifier   notify.Notifier
	log        *slog.Logger
}

// NewBookingService constructs a BookingService backed by the provided
// repos and notifier.
func NewBookingService(bookings repo.BookingRepo, categories repo.CategoryRepo, notifier notify.Notifier, log *slog.Logger) *BookingService {
	return &BookingService{bookings: bookings, categories: categories, notifier: notifier, log: log}
}

// CreateBookingInput carries the passenger-supplied trip facts.
type CreateBookingInput struct {
	PickupLocation    string
	DropLocation      string
	Distance          float64
	PickupDate        time.Time
	RideEndDate       time.Time
	MaleCount         int
	FemaleCount       int
	KidsCount         int
	CategoryID        uuid.UUID
	ACType            domain.ACType
	AdditionalDetails string
}

// Create validates the trip facts, quotes the initial price from the selected
// vehicle category, and persists a new booking in the in-review status.
// Returns domain.ErrValidation for bad input and domain.ErrNotFound when the
// vehicle category does not exist. Only passengers create bookings.
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, input CreateBookingInput) (domain.Booking, error) {
	if actor.Role != domain.RolePassenger {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: only passengers create bookings: %w", domain.ErrForbidden)
	}
	if err := validateBookingInput(input); err != nil {
		return domain.Booking{}, err
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}

	days := domain.JourneyDays(input.PickupDate, input.RideEndDate)
	booking := domain.Booking{
		PassengerID:       actor.ID,
		PickupLocation:    strings.TrimSpace(input.PickupLocation),
		DropLocation:      strings.TrimSpace(input.DropLocation),
		Distance:          input.Distance,
		PickupDate:        input.PickupDate,
		RideEndDate:       input.RideEndDate,
		JourneyDays:       days,
		MaleCount:         input.MaleCount,
		FemaleCount:       input.FemaleCount,
		KidsCount:         input.KidsCount,
		TotalPassengers:   input.MaleCount + input.FemaleCount + input.KidsCount,
		CategoryID:        input.CategoryID,
		ACType:            input.ACType,
		AdditionalDetails: strings.TrimSpace(input.AdditionalDetails),
		InitialPrice:      category.MinPricePerKm * input.Distance * float64(days),
	}

	entry := domain.HistoryEntry{
		Event:   eventCreated,
		Role:    domain.RolePassenger,
		Details: fmt.Sprintf("%s to %s, %d day(s)", booking.PickupLocation, booking.DropLocation, days),
	}
	created, err := s.bookings.Create(ctx, booking, entry)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}

	observability.BookingsCreatedTotal.Inc()
	s.broadcast(ctx, domain.RoleAdmin, "booking_created", map[string]any{
		"booking_id": created.ID.String(),
	})
	return created, nil
}

// GetByID returns a single booking, scoped to the caller: passengers see
// their own, riders see bookings bound or offered to them, admins see all.
func (s *BookingService) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	if err := canView(actor, booking); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	return booking, nil
}

// List returns bookings matching the filter. Admin only.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookingService) List(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("service.BookingService.List: %w", domain.ErrForbidden)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("service.BookingService.List: unknown status %q: %w", f.Status, domain.ErrValidation)
	}
	bookings, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.List: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// ListForPassenger returns a passenger's booking history, newest first.
// Passengers may only see their own; admins may see anyone's.
func (s *BookingService) ListForPassenger(ctx context.Context, actor domain.Actor, passengerID uuid.UUID) ([]domain.Booking, error) {
	if actor.Role != domain.RoleAdmin && !(actor.Role == domain.RolePassenger && actor.ID == passengerID) {
		return nil, fmt.Errorf("service.BookingService.ListForPassenger: %w", domain.ErrForbidden)
	}
	bookings, err := s.bookings.List(ctx, domain.BookingFilter{PassengerID: passengerID})
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListForPassenger: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// ListForRider returns a rider's bookings ordered by pickup date.
// Riders may only see their own; admins may see anyone's.
func (s *BookingService) ListForRider(ctx context.Context, actor domain.Actor, riderID uuid.UUID) ([]domain.Booking, error) {
	if actor.Role != domain.RoleAdmin && !(actor.Role == domain.RoleRider && actor.ID == riderID) {
		return nil, fmt.Errorf("service.BookingService.ListForRider: %w", domain.ErrForbidden)
	}
	bookings, err := s.bookings.ListByRider(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListForRider: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// History returns a booking's audit trail, with the same visibility rules
// as GetByID.
func (s *BookingService) History(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]domain.HistoryEntry, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.History: %w", err)
	}
	if err := canView(actor, booking); err != nil {
		return nil, fmt.Errorf("service.BookingService.History: %w", err)
	}
	entries, err := s.bookings.History(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.History: %w", err)
	}
	if entries == nil {
		return []domain.HistoryEntry{}, nil
	}
	return entries, nil
}

// UpdateStatus drives the ride lifecycle forward. Riders may only take their
// own booking from rider-assigned to in-process and from in-process to
// completed; admins may move any booking to any strictly later status.
// Cancellation goes through Cancel, never through this operation.
func (s *BookingService) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, to domain.Status) (domain.Booking, error) {
	if !to.Valid() || to == domain.StatusCancelled {
		return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: invalid target status %q: %w", to, domain.ErrValidation)
	}

	var (
		from    domain.Status
		riderID *uuid.UUID
	)
	switch actor.Role {
	case domain.RoleRider:
		switch to {
		case domain.StatusInProcess:
			from = domain.StatusRiderAssigned
		case domain.StatusCompleted:
			from = domain.StatusInProcess
		default:
			return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: riders may only start or complete a ride: %w", domain.ErrForbidden)
		}
		riderID = &actor.ID
	case domain.RoleAdmin:
		current, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: %w", err)
		}
		if !to.IsForwardOf(current.Status) {
			return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: cannot move %q to %q: %w", current.Status, to, domain.ErrInvalidState)
		}
		from = current.Status
	default:
		return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: %w", domain.ErrForbidden)
	}

	entry := domain.HistoryEntry{
		Event:   eventStatusUpdate,
		Role:    actor.Role,
		Details: fmt.Sprintf("%s to %s", from, to),
	}
	updated, err := s.bookings.UpdateStatus(ctx, id, from, to, riderID, entry)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: %w", err)
	}

	s.notifyPerson(ctx, updated.PassengerID, domain.RolePassenger, "status_updated", map[string]any{
		"booking_id": updated.ID.String(),
		"status":     string(updated.Status),
	})
	return updated, nil
}

// Cancel applies the role-specific cancellation rules:
//
//   - Passengers may cancel only while the booking is still in review; after
//     a rider commitment exists, cancellation goes through support.
//   - Riders may cancel a booking bound to them before completion, which
//     reopens the booking for a fresh dispatch round rather than burying it.
//   - Admins may cancel from any non-terminal state.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (domain.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}

	var (
		cancelled domain.Booking
		err       error
	)
	switch actor.Role {
	case domain.RolePassenger:
		cancelled, err = s.cancelByPassenger(ctx, actor, id, reason)
	case domain.RoleRider:
		cancelled, err = s.cancelByRider(ctx, actor, id, reason)
	case domain.RoleAdmin:
		entry := domain.HistoryEntry{Event: eventCancelled, Role: domain.RoleAdmin, Details: reason}
		allowed := []domain.Status{
			domain.StatusInReview, domain.StatusOfferSent,
			domain.StatusRiderAssigned, domain.StatusInProcess,
		}
		cancelled, err = s.bookings.Cancel(ctx, id, domain.RoleAdmin, reason, allowed, entry)
	default:
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", domain.ErrForbidden)
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}

	observability.BookingsCancelledTotal.WithLabelValues(string(actor.Role)).Inc()
	s.notifyPerson(ctx, cancelled.PassengerID, domain.RolePassenger, "booking_cancelled", map[string]any{
		"booking_id": cancelled.ID.String(),
		"by":         string(actor.Role),
	})
	return cancelled, nil
}

// cancelByPassenger enforces ownership and the before-commitment rule.
func (s *BookingService) cancelByPassenger(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.PassengerID != actor.ID {
		return domain.Booking{}, fmt.Errorf("not your booking: %w", domain.ErrForbidden)
	}
	if !booking.CanPassengerCancel() {
		if booking.IsTerminal() {
			return domain.Booking{}, fmt.Errorf("booking already %s: %w", booking.Status, domain.ErrInvalidState)
		}
		return domain.Booking{}, fmt.Errorf("cannot cancel after a rider commitment, contact support: %w", domain.ErrInvalidState)
	}

	entry := domain.HistoryEntry{Event: eventCancelled, Role: domain.RolePassenger, Details: reason}
	return s.bookings.Cancel(ctx, id, domain.RolePassenger, reason, []domain.Status{domain.StatusInReview}, entry)
}

// cancelByRider reopens the booking so the admin can re-dispatch; the freed
// window is immediately visible to the availability index.
func (s *BookingService) cancelByRider(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (domain.Booking, error) {
	cancelEntry := domain.HistoryEntry{Event: eventCancelled, Role: domain.RoleRider, Details: reason}
	reopenEntry := domain.HistoryEntry{Event: eventReopened, Role: domain.RoleRider, Details: "rider cancelled, reassignment pending"}

	reopened, err := s.bookings.CancelByRider(ctx, id, actor.ID, cancelEntry, reopenEntry)
	if err != nil {
		return domain.Booking{}, err
	}
	s.broadcast(ctx, domain.RoleAdmin, "booking_reopened", map[string]any{
		"booking_id": reopened.ID.String(),
	})
	return reopened, nil
}

// canView encodes per-role read visibility for a booking.
func canView(actor domain.Actor, b domain.Booking) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RolePassenger:
		if b.PassengerID == actor.ID {
			return nil
		}
	case domain.RoleRider:
		if (b.RiderID != nil && *b.RiderID == actor.ID) || b.IsOfferedTo(actor.ID) {
			return nil
		}
	}
	return domain.ErrForbidden
}

// validateBookingInput enforces the creation rules shared by every booking.
func validateBookingInput(input CreateBookingInput) error {
	if strings.TrimSpace(input.PickupLocation) == "" {
		return fmt.Errorf("%w: pickup location is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.DropLocation) == "" {
		return fmt.Errorf("%w: drop location is required", domain.ErrValidation)
	}
	if input.PickupDate.IsZero() || input.RideEndDate.IsZero() {
		return fmt.Errorf("%w: pickup and ride end dates are required", domain.ErrValidation)
	}
	if input.RideEndDate.Before(input.PickupDate) {
		return fmt.Errorf("%w: ride end date must not be before pickup date", domain.ErrValidation)
	}
	if input.Distance < 0 {
		return fmt.Errorf("%w: distance must not be negative", domain.ErrValidation)
	}
	if input.MaleCount < 0 || input.FemaleCount < 0 || input.KidsCount < 0 {
		return fmt.Errorf("%w: passenger counts must not be negative", domain.ErrValidation)
	}
	if input.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: vehicle category is required", domain.ErrValidation)
	}
	if !input.ACType.Valid() {
		return fmt.Errorf("%w: ac type must be AC, Non-AC, or Both", domain.ErrValidation)
	}
	return nil
}

// notifyPerson emits a targeted notification, logging failures and moving on.
// Delivery is best-effort by contract: a dead broker must be unobservable to
// the caller of the mutation that triggered the event.
func (s *BookingService) notifyPerson(ctx context.Context, targetID uuid.UUID, audience domain.Role, event string, payload map[string]any) {
	if err := s.notifier.Notify(ctx, targetID, audience, event, payload); err != nil {
		s.log.Warn("notify failed", "event", event, "error", err)
	}
}

// broadcast emits a role-wide notification, logging failures and moving on.
func (s *BookingService) broadcast(ctx context.Context, audience domain.Role, event string, payload map[string]any) {
	if err := s.notifier.Broadcast(ctx, audience, event, payload); err != nil {
		s.log.Warn("broadcast failed", "event", event, "error", err)
	}
}
