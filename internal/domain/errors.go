package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource (booking, rider, vehicle category, review) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. rating outside 1..5, ride end date before pickup date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller's role or identity does not satisfy
// the operation's guard (e.g. a rider accepting an offer that was never
// extended to them, or a passenger reviewing someone else's booking).
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState is returned when the requested transition is not legal from
// the booking's current status (e.g. cancelling a completed ride).
// Handlers should map this to HTTP 409.
var ErrInvalidState = errors.New("invalid state")

// ErrConflict is returned when a conditional update loses an optimistic
// concurrency race — most importantly losing the first-come-first-served
// offer accept, or an overlap with another active booking for the same rider.
// Losing the race is a legitimate business outcome, never retried internally.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
