// Package domain contains the core data types for the ride dispatch backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	// StatusInReview is the initial state: waiting for admin to dispatch offers.
	StatusInReview Status = "in-review"
	// StatusOfferSent means offers are out to one or more candidate riders.
	StatusOfferSent Status = "rider-offer-sent"
	// StatusRiderAssigned means exactly one rider accepted and is committed.
	StatusRiderAssigned Status = "rider-assigned"
	// StatusInProcess means the ride is underway.
	StatusInProcess Status = "in-process"
	// StatusCompleted is terminal: the ride finished.
	StatusCompleted Status = "completed"
	// StatusCancelled is terminal unless the booking is reopened for re-dispatch.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInReview, StatusOfferSent, StatusRiderAssigned,
		StatusInProcess, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// statusOrder positions each forward status on the lifecycle axis.
// Cancelled is not on the axis — it is reached by Cancel, never by UpdateStatus.
var statusOrder = map[Status]int{
	StatusInReview:      0,
	StatusOfferSent:     1,
	StatusRiderAssigned: 2,
	StatusInProcess:     3,
	StatusCompleted:     4,
}

// IsForwardOf reports whether s is strictly later than other on the lifecycle
// axis. Cancelled is never forward of anything.
func (s Status) IsForwardOf(other Status) bool {
	a, okA := statusOrder[s]
	b, okB := statusOrder[other]
	return okA && okB && a > b
}

// ACType is the air-conditioning preference recorded on a booking.
type ACType string

const (
	ACTypeAC    ACType = "AC"
	ACTypeNonAC ACType = "Non-AC"
	ACTypeBoth  ACType = "Both"
)

// Valid reports whether a is one of the known AC types.
func (a ACType) Valid() bool {
	switch a {
	case ACTypeAC, ACTypeNonAC, ACTypeBoth:
		return true
	}
	return false
}

// HistoryEntry is one record in a booking's append-only audit trail.
// Entries are only ever appended, never mutated or reordered.
type HistoryEntry struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Event     string
	Role      Role
	Details   string
	Timestamp time.Time
}

// Booking is the aggregate root of the dispatch core. It is created by a
// passenger, offered to riders by an admin, raced to acceptance by riders,
// and driven through the ride lifecycle. It is never physically deleted —
// cancellation is a status, not removal.
type Booking struct {
	ID          uuid.UUID
	PassengerID uuid.UUID

	PickupLocation string
	DropLocation   string
	Distance       float64 // km, caller-supplied
	PickupDate     time.Time
	RideEndDate    time.Time
	JourneyDays    int // derived, see JourneyDays

	MaleCount       int
	FemaleCount     int
	KidsCount       int
	TotalPassengers int // derived: male + female + kids

	CategoryID        uuid.UUID // selected vehicle category
	ACType            ACType
	AdditionalDetails string

	InitialPrice float64  // computed at creation: floor price × distance × days
	FinalPrice   *float64 // nil until an admin dispatches an offer

	Status        Status
	RiderID       *uuid.UUID  // nil unless assigned/in-process/completed
	OfferedRiders []uuid.UUID // non-empty only while Status == StatusOfferSent
	AcceptedAt    *time.Time  // set the instant a rider wins the offer race

	CancelledBy  *Role
	CancelReason *string
	CancelledAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// JourneyDays derives the chargeable day count of a trip window.
// A trip always spans at least one day; partial days round up.
func JourneyDays(pickup, end time.Time) int {
	days := int(math.Ceil(end.Sub(pickup).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Overlaps reports whether two [pickup, end] windows intersect.
// Touching endpoints count as an overlap: a rider cannot finish one ride and
// start another at the same instant.
func Overlaps(pickupA, endA, pickupB, endB time.Time) bool {
	return !pickupA.After(endB) && !endA.Before(pickupB)
}

// IsActive reports whether the booking currently binds its rider — the states
// that count against a rider's availability window.
func (b *Booking) IsActive() bool {
	return b.Status == StatusRiderAssigned || b.Status == StatusInProcess
}

// IsTerminal reports whether no further transitions are possible.
// A cancelled booking is terminal only until an admin re-dispatches it,
// which CanReassign gates.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// CanPassengerCancel reports whether the booking's passenger may still cancel.
// Passengers may only back out before any rider commitment exists; later
// cancellations go through support. This protects riders from late no-shows.
func (b *Booking) CanPassengerCancel() bool {
	return b.Status == StatusInReview
}

// CanRiderCancel reports whether riderID may cancel this booking.
// Only the bound rider may cancel, and only before completion.
func (b *Booking) CanRiderCancel(riderID uuid.UUID) bool {
	if b.RiderID == nil || *b.RiderID != riderID {
		return false
	}
	return b.Status != StatusCompleted && b.Status != StatusCancelled
}

// CanReassign reports whether an admin may dispatch a fresh offer round.
// A completed booking is done; a passenger-cancelled booking carries a
// permanent veto and can never be reassigned.
func (b *Booking) CanReassign() bool {
	if b.Status == StatusCompleted {
		return false
	}
	if b.Status == StatusCancelled && b.CancelledBy != nil && *b.CancelledBy == RolePassenger {
		return false
	}
	return true
}

// IsOfferedTo reports whether riderID currently holds an open offer.
func (b *Booking) IsOfferedTo(riderID uuid.UUID) bool {
	for _, id := range b.OfferedRiders {
		if id == riderID {
			return true
		}
	}
	return false
}

// BookingFilter narrows a booking listing. Zero values mean "no constraint".
type BookingFilter struct {
	Status      Status
	PassengerID uuid.UUID
	RiderID     uuid.UUID
}
