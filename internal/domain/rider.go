package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rider is a driver profile as the dispatch core sees it. Onboarding
// (documents, OTP verification, vehicle registration) happens elsewhere; the
// core reads the approval flag, vehicle count, and the rating aggregate.
type Rider struct {
	ID     uuid.UUID
	Name   string
	Mobile string
	Email  string

	// IsApproved gates candidacy: only approved riders receive offers.
	IsApproved bool

	// VehicleCount is the number of vehicles registered to this rider.
	// Riders without a vehicle never appear as candidates.
	VehicleCount int

	// ReviewCount and AverageRating are derived from the reviews table and
	// recomputed whenever a review is submitted or deleted. AverageRating is
	// 0 when the rider has no reviews.
	ReviewCount   int
	AverageRating float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate is a rider annotated for an admin's dispatch decision.
// Busy riders are flagged, not excluded — dispatch is a manual call, and the
// hard overlap veto applies only when the rider tries to accept.
type Candidate struct {
	Rider

	// CurrentlyBusy is true when the rider has an active booking whose window
	// overlaps the booking being dispatched.
	CurrentlyBusy bool
}
