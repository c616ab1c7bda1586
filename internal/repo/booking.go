package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// bookingColumns is the canonical SELECT/RETURNING column list for bookings.
// Every query that produces a domain.Booking uses it so scanBooking stays in
// sync with a single definition.
const bookingColumns = `id, passenger_id, pickup_location, drop_location, distance,
	pickup_date, ride_end_date, journey_days,
	male_count, female_count, kids_count, total_passengers,
	category_id, ac_type, additional_details,
	initial_price, final_price, status, rider_id, offered_riders, accepted_at,
	cancelled_by, cancel_reason, cancelled_at, created_at, updated_at`

// BookingRepo defines the persistence operations for the booking aggregate.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
//
// Mutators take the history entry to append; the row change and the append
// happen in one transaction, so a failed guard leaves both untouched.
type BookingRepo interface {
	// Create inserts a new booking in the in-review status together with its
	// first history entry and returns the persisted record.
	Create(ctx context.Context, b domain.Booking, entry domain.HistoryEntry) (domain.Booking, error)

	// GetByID retrieves a single booking by its UUID primary key.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// List returns bookings matching the filter, newest first.
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)

	// ListByRider returns a rider's bookings ordered by pickup date ascending.
	ListByRider(ctx context.Context, riderID uuid.UUID) ([]domain.Booking, error)

	// History returns a booking's audit trail in append order.
	History(ctx context.Context, bookingID uuid.UUID) ([]domain.HistoryEntry, error)

	// Dispatch atomically moves the booking to rider-offer-sent with the given
	// candidate set and final price. The conditional update only proceeds from
	// in-review, or from cancelled when the cancellation was not the
	// passenger's. Returns domain.ErrConflict when a concurrent dispatch
	// already moved the booking, domain.ErrInvalidState otherwise.
	Dispatch(ctx context.Context, id uuid.UUID, riderIDs []uuid.UUID, finalPrice float64, entry domain.HistoryEntry) (domain.Booking, error)

	// Accept atomically assigns the booking to riderID iff the status is still
	// rider-offer-sent, the rider holds an open offer, and the rider has no
	// overlapping active booking. Exactly one concurrent caller can win;
	// losers get domain.ErrConflict.
	Accept(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error)

	// Reject removes riderID from the open offer set. When the last candidate
	// rejects, the booking auto-reverts to in-review for a fresh dispatch round.
	Reject(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error)

	// UpdateStatus conditionally moves the booking from exactly `from` to `to`.
	// When riderID is non-nil the update additionally requires the booking to
	// be bound to that rider, returning domain.ErrForbidden when it is not.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, riderID *uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error)

	// Cancel stamps the booking cancelled iff its current status is in allowed.
	// The offer set and rider binding are cleared so cancelled bookings never
	// hold riders.
	Cancel(ctx context.Context, id uuid.UUID, by domain.Role, reason string, allowed []domain.Status, entry domain.HistoryEntry) (domain.Booking, error)

	// CancelByRider handles a rider backing out of a booking bound to them:
	// the booking is reopened to in-review with rider binding and final price
	// cleared, and both the cancellation and reopening history entries are
	// appended in the same transaction.
	CancelByRider(ctx context.Context, id, riderID uuid.UUID, cancelEntry, reopenEntry domain.HistoryEntry) (domain.Booking, error)

	// FindOverlapping returns the rider's active bookings whose window
	// intersects [pickup, end].
	FindOverlapping(ctx context.Context, riderID uuid.UUID, pickup, end time.Time) ([]domain.Booking, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

// Create inserts the booking row and its first history entry in one transaction.
func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking, entry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (
			passenger_id, pickup_location, drop_location, distance,
			pickup_date, ride_end_date, journey_days,
			male_count, female_count, kids_count, total_passengers,
			category_id, ac_type, additional_details, initial_price, status
		)
		VALUES (
			@passenger_id, @pickup_location, @drop_location, @distance,
			@pickup_date, @ride_end_date, @journey_days,
			@male_count, @female_count, @kids_count, @total_passengers,
			@category_id, @ac_type, @additional_details, @initial_price, 'in-review'
		)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"passenger_id":       b.PassengerID,
		"pickup_location":    b.PickupLocation,
		"drop_location":      b.DropLocation,
		"distance":           b.Distance,
		"pickup_date":        b.PickupDate,
		"ride_end_date":      b.RideEndDate,
		"journey_days":       b.JourneyDays,
		"male_count":         b.MaleCount,
		"female_count":       b.FemaleCount,
		"kids_count":         b.KidsCount,
		"total_passengers":   b.TotalPassengers,
		"category_id":        b.CategoryID,
		"ac_type":            string(b.ACType),
		"additional_details": b.AdditionalDetails,
		"initial_price":      b.InitialPrice,
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanBooking(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	if err := appendHistory(ctx, tx, created.ID, entry); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: commit: %w", err)
	}
	return created, nil
}

// GetByID retrieves a booking by primary key.
func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	b, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return b, nil
}

// List returns bookings matching the filter ordered by creation time, newest first.
func (r *pgBookingRepo) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE (@status = '' OR status = @status)
		  AND (@passenger_id::uuid IS NULL OR passenger_id = @passenger_id)
		  AND (@rider_id::uuid IS NULL OR rider_id = @rider_id)
		ORDER BY created_at DESC`

	args := pgx.NamedArgs{
		"status":       string(f.Status),
		"passenger_id": nilIfZero(f.PassengerID),
		"rider_id":     nilIfZero(f.RiderID),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, "repo.BookingRepo.List")
}

// ListByRider returns a rider's bookings ordered by pickup date ascending,
// the order a driver plans their days in.
func (r *pgBookingRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE rider_id = @rider_id
		ORDER BY pickup_date ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"rider_id": riderID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByRider: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, "repo.BookingRepo.ListByRider")
}

// History returns the booking's audit trail in append order.
func (r *pgBookingRepo) History(ctx context.Context, bookingID uuid.UUID) ([]domain.HistoryEntry, error) {
	const q = `
		SELECT id, booking_id, event, role, details, ts
		FROM booking_history
		WHERE booking_id = @booking_id
		ORDER BY ts ASC, id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"booking_id": bookingID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.History: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var role string
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Event, &role, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.History: scan: %w", err)
		}
		e.Role = domain.Role(role)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.History: rows: %w", err)
	}
	return entries, nil
}

// Dispatch conditionally moves the booking to rider-offer-sent. The WHERE
// clause is the compare-and-set: a concurrent dispatch that already moved the
// booking makes this statement match zero rows.
func (r *pgBookingRepo) Dispatch(ctx context.Context, id uuid.UUID, riderIDs []uuid.UUID, finalPrice float64, entry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status         = 'rider-offer-sent',
		    offered_riders = @offered_riders,
		    final_price    = @final_price,
		    rider_id       = NULL,
		    accepted_at    = NULL,
		    cancelled_by   = NULL,
		    cancel_reason  = NULL,
		    cancelled_at   = NULL,
		    updated_at     = now()
		WHERE id = @id
		  AND (status = 'in-review'
		       OR (status = 'cancelled' AND cancelled_by IS DISTINCT FROM 'passenger'))
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"id":             id,
		"offered_riders": riderIDs,
		"final_price":    finalPrice,
	}

	b, err := r.mutate(ctx, q, args, entry)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, r.classifyDispatchFailure(ctx, id)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Dispatch: %w", err)
	}
	return b, nil
}

// Accept is the race-resolution point. The single conditional UPDATE checks,
// atomically with the write: current status, offer membership, and the
// no-overlap rule against the rider's other active bookings. Of N concurrent
// accepts the store serializes exactly one through this statement.
func (r *pgBookingRepo) Accept(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status         = 'rider-assigned',
		    rider_id       = @rider_id,
		    offered_riders = '{}',
		    accepted_at    = now(),
		    updated_at     = now()
		WHERE id = @id
		  AND status = 'rider-offer-sent'
		  AND @rider_id = ANY (offered_riders)
		  AND NOT EXISTS (
		      SELECT 1 FROM bookings other
		      WHERE other.rider_id = @rider_id
		        AND other.status IN ('rider-assigned', 'in-process')
		        AND other.pickup_date <= bookings.ride_end_date
		        AND other.ride_end_date >= bookings.pickup_date
		  )
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{"id": id, "rider_id": riderID}

	b, err := r.mutate(ctx, q, args, entry)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, r.classifyAcceptFailure(ctx, id, riderID)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Accept: %w", err)
	}
	return b, nil
}

// Reject removes the rider from the offer set. Emptying the set means the
// offer round failed, so the same statement reverts the booking to in-review.
func (r *pgBookingRepo) Reject(ctx context.Context, id, riderID uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET offered_riders = array_remove(offered_riders, @rider_id),
		    status = CASE
		        WHEN cardinality(array_remove(offered_riders, @rider_id)) = 0
		        THEN 'in-review' ELSE status
		    END,
		    updated_at = now()
		WHERE id = @id
		  AND status = 'rider-offer-sent'
		  AND @rider_id = ANY (offered_riders)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{"id": id, "rider_id": riderID}

	b, err := r.mutate(ctx, q, args, entry)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, r.classifyRejectFailure(ctx, id, riderID)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Reject: %w", err)
	}
	return b, nil
}

// UpdateStatus conditionally moves the booking from exactly `from` to `to`.
// Leaving rider-offer-sent clears the offer set: open offers only exist while
// the booking is in that state.
func (r *pgBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, riderID *uuid.UUID, entry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status = @to,
		    offered_riders = CASE
		        WHEN status = 'rider-offer-sent' THEN '{}' ELSE offered_riders
		    END,
		    updated_at = now()
		WHERE id = @id
		  AND status = @from
		  AND (@rider_id::uuid IS NULL OR rider_id = @rider_id)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"id":       id,
		"from":     string(from),
		"to":       string(to),
		"rider_id": riderID,
	}

	b, err := r.mutate(ctx, q, args, entry)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, r.classifyStatusFailure(ctx, id, from, riderID)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.UpdateStatus: %w", err)
	}
	return b, nil
}

// Cancel stamps the booking cancelled iff its current status is in allowed.
func (r *pgBookingRepo) Cancel(ctx context.Context, id uuid.UUID, by domain.Role, reason string, allowed []domain.Status, entry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status         = 'cancelled',
		    cancelled_by   = @cancelled_by,
		    cancel_reason  = @cancel_reason,
		    cancelled_at   = now(),
		    offered_riders = '{}',
		    rider_id       = NULL,
		    accepted_at    = NULL,
		    updated_at     = now()
		WHERE id = @id
		  AND status = ANY (@allowed)
		RETURNING ` + bookingColumns

	allowedStrs := make([]string, len(allowed))
	for i, s := range allowed {
		allowedStrs[i] = string(s)
	}
	args := pgx.NamedArgs{
		"id":            id,
		"cancelled_by":  string(by),
		"cancel_reason": reason,
		"allowed":       allowedStrs,
	}

	b, err := r.mutate(ctx, q, args, entry)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, r.classifyCancelFailure(ctx, id)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Cancel: %w", err)
	}
	return b, nil
}

// CancelByRider reopens a rider-cancelled booking for a fresh dispatch round.
// The binding and the admin-set price are cleared; the cancellation and the
// reopening are recorded as two history entries in the same transaction.
func (r *pgBookingRepo) CancelByRider(ctx context.Context, id, riderID uuid.UUID, cancelEntry, reopenEntry domain.HistoryEntry) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status         = 'in-review',
		    rider_id       = NULL,
		    final_price    = NULL,
		    accepted_at    = NULL,
		    offered_riders = '{}',
		    updated_at     = now()
		WHERE id = @id
		  AND rider_id = @rider_id
		  AND status IN ('rider-assigned', 'in-process')
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{"id": id, "rider_id": riderID}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.CancelByRider: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, q, args))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, r.classifyRiderCancelFailure(ctx, id, riderID)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.CancelByRider: %w", err)
	}
	if err := appendHistory(ctx, tx, id, cancelEntry); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.CancelByRider: %w", err)
	}
	if err := appendHistory(ctx, tx, id, reopenEntry); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.CancelByRider: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.CancelByRider: commit: %w", err)
	}
	return b, nil
}

// FindOverlapping returns the rider's active bookings whose window intersects
// [pickup, end]. Used to annotate dispatch candidates; the authoritative
// overlap veto lives inside Accept's conditional update.
func (r *pgBookingRepo) FindOverlapping(ctx context.Context, riderID uuid.UUID, pickup, end time.Time) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE rider_id = @rider_id
		  AND status IN ('rider-assigned', 'in-process')
		  AND pickup_date <= @end_date
		  AND ride_end_date >= @pickup_date
		ORDER BY pickup_date ASC`

	args := pgx.NamedArgs{"rider_id": riderID, "pickup_date": pickup, "end_date": end}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.FindOverlapping: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, "repo.BookingRepo.FindOverlapping")
}

// --- internals --------------------------------------------------------------

// mutate runs one conditional UPDATE plus its history append in a transaction.
// A zero-row update surfaces as domain.ErrNotFound for the caller to classify;
// nothing is committed in that case.
func (r *pgBookingRepo) mutate(ctx context.Context, q string, args pgx.NamedArgs, entry domain.HistoryEntry) (domain.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Booking{}, err
	}
	if err := appendHistory(ctx, tx, b.ID, entry); err != nil {
		return domain.Booking{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Booking{}, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

// appendHistory inserts one audit-trail row within the caller's transaction.
func appendHistory(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, entry domain.HistoryEntry) error {
	const q = `
		INSERT INTO booking_history (booking_id, event, role, details)
		VALUES (@booking_id, @event, @role, @details)`

	args := pgx.NamedArgs{
		"booking_id": bookingID,
		"event":      entry.Event,
		"role":       string(entry.Role),
		"details":    entry.Details,
	}
	if _, err := tx.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// classifyDispatchFailure turns a zero-row dispatch into the precise domain error.
func (r *pgBookingRepo) classifyDispatchFailure(ctx context.Context, id uuid.UUID) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err // not found, or the read itself failed
	}
	switch {
	case b.Status == domain.StatusOfferSent:
		return fmt.Errorf("repo.BookingRepo.Dispatch: offer already dispatched: %w", domain.ErrConflict)
	case b.Status == domain.StatusCancelled:
		return fmt.Errorf("repo.BookingRepo.Dispatch: cancelled by passenger, cannot be reassigned: %w", domain.ErrInvalidState)
	default:
		return fmt.Errorf("repo.BookingRepo.Dispatch: cannot dispatch from status %q: %w", b.Status, domain.ErrInvalidState)
	}
}

// classifyAcceptFailure turns a zero-row accept into the precise domain error:
// the booking is gone, the race was lost, the rider was never offered it, or
// the rider's calendar conflicts.
func (r *pgBookingRepo) classifyAcceptFailure(ctx context.Context, id, riderID uuid.UUID) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case b.Status != domain.StatusOfferSent:
		return fmt.Errorf("repo.BookingRepo.Accept: offer no longer available: %w", domain.ErrConflict)
	case !b.IsOfferedTo(riderID):
		return fmt.Errorf("repo.BookingRepo.Accept: offer was not extended to this rider: %w", domain.ErrForbidden)
	default:
		return fmt.Errorf("repo.BookingRepo.Accept: rider has an overlapping active booking: %w", domain.ErrConflict)
	}
}

// classifyRejectFailure turns a zero-row reject into the precise domain error.
func (r *pgBookingRepo) classifyRejectFailure(ctx context.Context, id, riderID uuid.UUID) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != domain.StatusOfferSent {
		return fmt.Errorf("repo.BookingRepo.Reject: no open offer on this booking: %w", domain.ErrInvalidState)
	}
	return fmt.Errorf("repo.BookingRepo.Reject: offer was not extended to this rider: %w", domain.ErrForbidden)
}

// classifyStatusFailure turns a zero-row status update into the precise domain error.
func (r *pgBookingRepo) classifyStatusFailure(ctx context.Context, id uuid.UUID, from domain.Status, riderID *uuid.UUID) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.Status != from {
		return fmt.Errorf("repo.BookingRepo.UpdateStatus: booking is %q, not %q: %w", b.Status, from, domain.ErrInvalidState)
	}
	if riderID != nil && (b.RiderID == nil || *b.RiderID != *riderID) {
		return fmt.Errorf("repo.BookingRepo.UpdateStatus: booking is not bound to this rider: %w", domain.ErrForbidden)
	}
	return fmt.Errorf("repo.BookingRepo.UpdateStatus: update raced: %w", domain.ErrConflict)
}

// classifyCancelFailure turns a zero-row cancel into the precise domain error.
func (r *pgBookingRepo) classifyCancelFailure(ctx context.Context, id uuid.UUID) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("repo.BookingRepo.Cancel: booking already %s: %w", b.Status, domain.ErrInvalidState)
}

// classifyRiderCancelFailure turns a zero-row rider cancel into the precise domain error.
func (r *pgBookingRepo) classifyRiderCancelFailure(ctx context.Context, id, riderID uuid.UUID) error {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.RiderID == nil || *b.RiderID != riderID {
		return fmt.Errorf("repo.BookingRepo.CancelByRider: booking is not bound to this rider: %w", domain.ErrForbidden)
	}
	return fmt.Errorf("repo.BookingRepo.CancelByRider: booking already %s: %w", b.Status, domain.ErrInvalidState)
}

// nilIfZero converts the zero UUID into a NULL parameter so optional filter
// predicates can use "@x::uuid IS NULL OR column = @x".
func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// collectBookings drains rows into a slice, wrapping errors with op.
func collectBookings(rows pgx.Rows, op string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return bookings, nil
}

// scanBooking maps a single database row into a domain.Booking, handling the
// nullable rider binding, price, and cancellation columns.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b           domain.Booking
		status      string
		acType      string
		riderID     *uuid.UUID
		acceptedAt  pgtype.Timestamptz
		cancelledBy pgtype.Text
		cancelledAt pgtype.Timestamptz
		reason      pgtype.Text
	)

	err := s.Scan(
		&b.ID, &b.PassengerID, &b.PickupLocation, &b.DropLocation, &b.Distance,
		&b.PickupDate, &b.RideEndDate, &b.JourneyDays,
		&b.MaleCount, &b.FemaleCount, &b.KidsCount, &b.TotalPassengers,
		&b.CategoryID, &acType, &b.AdditionalDetails,
		&b.InitialPrice, &b.FinalPrice, &status, &riderID, &b.OfferedRiders, &acceptedAt,
		&cancelledBy, &reason, &cancelledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	b.Status = domain.Status(status)
	b.ACType = domain.ACType(acType)
	b.RiderID = riderID
	if acceptedAt.Valid {
		t := acceptedAt.Time
		b.AcceptedAt = &t
	}
	if cancelledBy.Valid {
		role := domain.Role(cancelledBy.String)
		b.CancelledBy = &role
	}
	if reason.Valid {
		v := reason.String
		b.CancelReason = &v
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return b, nil
}
