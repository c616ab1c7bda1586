package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/notify"
	"github.com/pkordes/ride-dispatch/internal/observability"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// ReviewService handles post-ride reviews and keeps rider rating aggregates
// consistent with the review rows.
type ReviewService struct {
	reviews  repo.ReviewRepo
	bookings repo.BookingRepo
	notifier notify.Notifier
	log      *slog.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews repo.ReviewRepo, bookings repo.BookingRepo, notifier notify.Notifier, log *slog.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings, notifier: notifier, log: log}
}

// Submit records the passenger's review of a completed ride and folds the
// rating into the rider's aggregate. One review per booking: a duplicate
// submission fails with domain.ErrValidation. Only the booking's passenger
// may review, and only after completion.
func (s *ReviewService) Submit(ctx context.Context, actor domain.Actor, bookingID uuid.UUID, rating int, comment string) (domain.Review, error) {
	if actor.Role != domain.RolePassenger {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: %w", domain.ErrForbidden)
	}
	if rating < 1 || rating > 5 {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: %w: rating must be between 1 and 5", domain.ErrValidation)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: %w", err)
	}
	if booking.PassengerID != actor.ID {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: not your booking: %w", domain.ErrForbidden)
	}
	if booking.Status != domain.StatusCompleted {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: booking is %s, reviews require a completed ride: %w",
			booking.Status, domain.ErrInvalidState)
	}
	if booking.RiderID == nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: booking has no rider: %w", domain.ErrInvalidState)
	}

	review := domain.Review{
		BookingID:   bookingID,
		PassengerID: actor.ID,
		RiderID:     *booking.RiderID,
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
	}
	entry := domain.HistoryEntry{
		Event:   eventReviewed,
		Role:    domain.RolePassenger,
		Details: fmt.Sprintf("Rating: %d/5", rating),
	}
	created, err := s.reviews.Create(ctx, review, entry)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Submit: %w", err)
	}

	observability.ReviewsSubmittedTotal.Inc()
	if err := s.notifier.Notify(ctx, created.RiderID, domain.RoleRider, "review_received", map[string]any{
		"booking_id": bookingID.String(),
		"rating":     rating,
	}); err != nil {
		s.log.Warn("notify failed", "event", "review_received", "error", err)
	}
	return created, nil
}

// Get returns a single review by ID. Admin only.
func (s *ReviewService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Review, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Get: %w", domain.ErrForbidden)
	}
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Get: %w", err)
	}
	return review, nil
}

// GetByBooking returns the review attached to a booking, visible to the
// booking's passenger, its rider, and admins.
func (s *ReviewService) GetByBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (domain.Review, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.GetByBooking: %w", err)
	}
	if err := canView(actor, booking); err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.GetByBooking: %w", err)
	}
	review, err := s.reviews.GetByBookingID(ctx, bookingID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.GetByBooking: %w", err)
	}
	return review, nil
}

// List returns reviews matching the filter with the total count for paging.
// Riders may list their own reviews; admins may list anyone's.
func (s *ReviewService) List(ctx context.Context, actor domain.Actor, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error) {
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleRider:
		if f.RiderID != actor.ID {
			return nil, 0, fmt.Errorf("service.ReviewService.List: %w", domain.ErrForbidden)
		}
	default:
		return nil, 0, fmt.Errorf("service.ReviewService.List: %w", domain.ErrForbidden)
	}

	reviews, total, err := s.reviews.List(ctx, f, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReviewService.List: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, total, nil
}

// Delete removes a review and recomputes the rider's aggregate from the
// remaining rows. Admin only, used for moderation.
func (s *ReviewService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if actor.Role != domain.RoleAdmin {
		return fmt.Errorf("service.ReviewService.Delete: %w", domain.ErrForbidden)
	}
	rider, err := s.reviews.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.ReviewService.Delete: %w", err)
	}
	s.log.Info("review deleted",
		"review_id", id,
		"rider_id", rider.ID,
		"review_count", rider.ReviewCount,
		"average_rating", rider.AverageRating)
	return nil
}
