package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/notify"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// RiderService exposes rider profiles and the admin approval switch.
type RiderService struct {
	riders   repo.RiderRepo
	notifier notify.Notifier
	log      *slog.Logger
}

// NewRiderService constructs a RiderService.
func NewRiderService(riders repo.RiderRepo, notifier notify.Notifier, log *slog.Logger) *RiderService {
	return &RiderService{riders: riders, notifier: notifier, log: log}
}

// Get returns a rider profile. Riders may read their own; admins any.
func (s *RiderService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Rider, error) {
	if actor.Role != domain.RoleAdmin && !(actor.Role == domain.RoleRider && actor.ID == id) {
		return domain.Rider{}, fmt.Errorf("service.RiderService.Get: %w", domain.ErrForbidden)
	}
	rider, err := s.riders.GetByID(ctx, id)
	if err != nil {
		return domain.Rider{}, fmt.Errorf("service.RiderService.Get: %w", err)
	}
	return rider, nil
}

// List returns all rider profiles. Admin only.
func (s *RiderService) List(ctx context.Context, actor domain.Actor) ([]domain.Rider, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("service.RiderService.List: %w", domain.ErrForbidden)
	}
	riders, err := s.riders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RiderService.List: %w", err)
	}
	if riders == nil {
		return []domain.Rider{}, nil
	}
	return riders, nil
}

// SetApproval flips a rider's approval flag. Admin only. Unapproved riders
// are excluded from candidate lists and rejected at dispatch time.
func (s *RiderService) SetApproval(ctx context.Context, actor domain.Actor, id uuid.UUID, approved bool) (domain.Rider, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.Rider{}, fmt.Errorf("service.RiderService.SetApproval: %w", domain.ErrForbidden)
	}
	rider, err := s.riders.SetApproval(ctx, id, approved)
	if err != nil {
		return domain.Rider{}, fmt.Errorf("service.RiderService.SetApproval: %w", err)
	}

	if err := s.notifier.Notify(ctx, rider.ID, domain.RoleRider, "approval_updated", map[string]any{
		"approved": approved,
	}); err != nil {
		s.log.Warn("notify failed", "event", "approval_updated", "error", err)
	}
	return rider, nil
}
