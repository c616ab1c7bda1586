// Package notify is the best-effort notification boundary of the dispatch
// core. Emission is fire-and-forget: services call Notify/Broadcast after a
// booking mutation commits, log any error, and never let a delivery failure
// affect the mutation's outcome.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// Event is the envelope published for every notification. Payload carries
// event-specific fields (booking id, price, status, ...).
type Event struct {
	Name      string         `json:"name"`
	TargetID  string         `json:"target_id,omitempty"` // empty for broadcasts
	Audience  domain.Role    `json:"audience"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Notifier delivers events to passengers, riders, and admins.
// Implementations must be safe for concurrent use. Callers treat delivery as
// at-most-once and ignore the returned error beyond logging it.
type Notifier interface {
	// Notify targets a single principal.
	Notify(ctx context.Context, targetID uuid.UUID, audience domain.Role, event string, payload map[string]any) error

	// Broadcast targets every principal of a role (e.g. the admin dashboard).
	Broadcast(ctx context.Context, audience domain.Role, event string, payload map[string]any) error
}

// Nop is a Notifier that discards everything. Used in tests and when no
// broker is configured.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, domain.Role, string, map[string]any) error {
	return nil
}

func (Nop) Broadcast(context.Context, domain.Role, string, map[string]any) error {
	return nil
}

var _ Notifier = Nop{}
