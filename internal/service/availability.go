package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// AvailabilityService answers the admin's dispatch-time question: which
// approved riders could take this booking's window? Riders already committed
// to an overlapping ride are flagged busy rather than hidden, so the admin
// sees the full picture before choosing the offer set.
type AvailabilityService struct {
	bookings repo.BookingRepo
	riders   repo.RiderRepo
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(bookings repo.BookingRepo, riders repo.RiderRepo) *AvailabilityService {
	return &AvailabilityService{bookings: bookings, riders: riders}
}

// CandidatesFor lists dispatch candidates for the booking's time window,
// best-rated first. Admin only.
func (s *AvailabilityService) CandidatesFor(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) ([]domain.Candidate, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("service.AvailabilityService.CandidatesFor: %w", domain.ErrForbidden)
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.CandidatesFor: %w", err)
	}

	candidates, err := s.riders.ListCandidates(ctx, booking.PickupDate, booking.RideEndDate)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.CandidatesFor: %w", err)
	}
	if candidates == nil {
		return []domain.Candidate{}, nil
	}
	return candidates, nil
}
