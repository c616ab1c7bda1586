package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a passenger's post-completion feedback on a ride. Exactly one
// review may exist per booking (enforced by a uniqueness constraint on
// BookingID). Reviews are immutable once created; only an admin may delete
// one, which also reverses its effect on the rider's rating aggregate.
type Review struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	PassengerID uuid.UUID
	RiderID     uuid.UUID

	// Rating is an integer score from 1 to 5 inclusive.
	Rating  int
	Comment string

	CreatedAt time.Time
}

// ReviewFilter narrows a review listing. Zero values mean "any".
type ReviewFilter struct {
	RiderID uuid.UUID
	Rating  int
}
