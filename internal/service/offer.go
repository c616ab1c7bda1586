package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/notify"
	"github.com/pkordes/ride-dispatch/internal/observability"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// OfferService runs the dispatch rounds: an admin fans an offer out to a set
// of candidate riders, and the riders race to accept. At most one wins; the
// rest find the offer gone.
type OfferService struct {
	bookings repo.BookingRepo
	riders   repo.RiderRepo
	notifier notify.Notifier
	log      *slog.Logger
}

// NewOfferService constructs an OfferService.
func NewOfferService(bookings repo.BookingRepo, riders repo.RiderRepo, notifier notify.Notifier, log *slog.Logger) *OfferService {
	return &OfferService{bookings: bookings, riders: riders, notifier: notifier, log: log}
}

// Dispatch sends the booking's offer to the given riders at the given final
// price and moves the booking to rider-offer-sent. Admin only. The target
// booking must be in review, or cancelled by anyone except its passenger;
// a passenger cancellation is a permanent veto on further dispatching.
// Every listed rider must be approved.
func (s *OfferService) Dispatch(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, riderIDs []uuid.UUID, finalPrice float64) (domain.Booking, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Dispatch: %w", domain.ErrForbidden)
	}
	riderIDs = dedupe(riderIDs)
	if len(riderIDs) == 0 {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Dispatch: %w: at least one rider is required", domain.ErrValidation)
	}
	if finalPrice <= 0 {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Dispatch: %w: final price must be positive", domain.ErrValidation)
	}

	unapproved, err := s.riders.Unapproved(ctx, riderIDs)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Dispatch: %w", err)
	}
	if len(unapproved) > 0 {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Dispatch: %w: riders not approved or unknown: %s",
			domain.ErrValidation, joinIDs(unapproved))
	}

	entry := domain.HistoryEntry{
		Event:   eventOfferSent,
		Role:    domain.RoleAdmin,
		Details: fmt.Sprintf("%d rider(s), final price %.2f", len(riderIDs), finalPrice),
	}
	booking, err := s.bookings.Dispatch(ctx, bookingID, riderIDs, finalPrice, entry)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Dispatch: %w", err)
	}

	observability.OffersDispatchedTotal.Inc()
	for _, riderID := range riderIDs {
		s.notifyRider(ctx, riderID, "offer_received", map[string]any{
			"booking_id":  booking.ID.String(),
			"final_price": finalPrice,
		})
	}
	return booking, nil
}

// Accept claims the offer for the calling rider. First accept wins: the
// booking moves to rider-assigned and binds to the rider atomically, so a
// second rider racing on the same offer gets domain.ErrConflict. A rider
// already committed to an overlapping ride also gets domain.ErrConflict.
func (s *OfferService) Accept(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error) {
	if actor.Role != domain.RoleRider {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Accept: %w", domain.ErrForbidden)
	}

	entry := domain.HistoryEntry{Event: eventOfferAccept, Role: domain.RoleRider}
	booking, err := s.bookings.Accept(ctx, bookingID, actor.ID, entry)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			observability.OfferConflictsTotal.Inc()
		}
		return domain.Booking{}, fmt.Errorf("service.OfferService.Accept: %w", err)
	}

	observability.OffersAcceptedTotal.Inc()
	s.notifyPerson(ctx, booking.PassengerID, domain.RolePassenger, "rider_assigned", map[string]any{
		"booking_id": booking.ID.String(),
		"rider_id":   actor.ID.String(),
	})
	return booking, nil
}

// Reject removes the calling rider from the offer set. When the last offered
// rider rejects, the booking falls back to in-review so the admin can run a
// fresh dispatch round.
func (s *OfferService) Reject(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Booking, error) {
	if actor.Role != domain.RoleRider {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Reject: %w", domain.ErrForbidden)
	}

	entry := domain.HistoryEntry{Event: eventOfferReject, Role: domain.RoleRider}
	booking, err := s.bookings.Reject(ctx, bookingID, actor.ID, entry)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.OfferService.Reject: %w", err)
	}

	if booking.Status == domain.StatusInReview {
		s.broadcast(ctx, domain.RoleAdmin, "offer_round_exhausted", map[string]any{
			"booking_id": booking.ID.String(),
		})
	}
	return booking, nil
}

func (s *OfferService) notifyRider(ctx context.Context, riderID uuid.UUID, event string, payload map[string]any) {
	if err := s.notifier.Notify(ctx, riderID, domain.RoleRider, event, payload); err != nil {
		s.log.Warn("notify failed", "event", event, "error", err)
	}
}

func (s *OfferService) notifyPerson(ctx context.Context, targetID uuid.UUID, audience domain.Role, event string, payload map[string]any) {
	if err := s.notifier.Notify(ctx, targetID, audience, event, payload); err != nil {
		s.log.Warn("notify failed", "event", event, "error", err)
	}
}

func (s *OfferService) broadcast(ctx context.Context, audience domain.Role, event string, payload map[string]any) {
	if err := s.notifier.Broadcast(ctx, audience, event, payload); err != nil {
		s.log.Warn("broadcast failed", "event", event, "error", err)
	}
}

// dedupe drops duplicate rider IDs while preserving order.
// Returns a fresh slice; the caller's slice is left untouched.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
