package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

const riderColumns = `r.id, r.name, r.mobile, r.email, r.is_approved,
	(SELECT count(*) FROM vehicles v WHERE v.rider_id = r.id) AS vehicle_count,
	r.review_count, r.average_rating, r.created_at, r.updated_at`

// RiderRepo defines the persistence operations for rider profiles as the
// dispatch core consumes them. Onboarding writes (documents, OTP) happen in
// another service; here we read profiles, flip approval, and maintain the
// rating aggregate.
type RiderRepo interface {
	// GetByID retrieves a single rider. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Rider, error)

	// List returns all riders, newest first.
	List(ctx context.Context) ([]domain.Rider, error)

	// ListCandidates returns approved riders with at least one registered
	// vehicle, annotated with whether an active booking of theirs overlaps
	// [pickup, end]. Ordered best-rated and most-reviewed first, with the
	// rider id as a deterministic tie-break.
	ListCandidates(ctx context.Context, pickup, end time.Time) ([]domain.Candidate, error)

	// Unapproved returns the subset of ids that do not belong to a currently
	// approved rider (unknown ids included). An empty result means every id
	// may receive an offer.
	Unapproved(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	// SetApproval flips the approval flag that gates offer candidacy.
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.Rider, error)
}

// pgRiderRepo is the Postgres implementation of RiderRepo.
type pgRiderRepo struct {
	db db
}

// NewRiderRepo constructs a RiderRepo backed by the provided db connection.
func NewRiderRepo(db db) RiderRepo {
	return &pgRiderRepo{db: db}
}

// GetByID retrieves a rider by primary key.
func (r *pgRiderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	q := `SELECT ` + riderColumns + ` FROM riders r WHERE r.id = @id`

	rider, err := scanRider(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Rider{}, fmt.Errorf("repo.RiderRepo.GetByID: %w", err)
	}
	return rider, nil
}

// List returns all riders ordered by creation time, newest first.
func (r *pgRiderRepo) List(ctx context.Context) ([]domain.Rider, error) {
	q := `SELECT ` + riderColumns + ` FROM riders r ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RiderRepo.List: %w", err)
	}
	defer rows.Close()

	var riders []domain.Rider
	for rows.Next() {
		rider, err := scanRider(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RiderRepo.List: scan: %w", err)
		}
		riders = append(riders, rider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RiderRepo.List: rows: %w", err)
	}
	return riders, nil
}

// ListCandidates returns the dispatch candidate list for a booking window.
// Busy riders are annotated, not excluded — the admin makes the call, and the
// hard overlap veto is enforced at accept time.
func (r *pgRiderRepo) ListCandidates(ctx context.Context, pickup, end time.Time) ([]domain.Candidate, error) {
	q := `SELECT ` + riderColumns + `,
		EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.rider_id = r.id
			  AND b.status IN ('rider-assigned', 'in-process')
			  AND b.pickup_date <= @end_date
			  AND b.ride_end_date >= @pickup_date
		) AS currently_busy
		FROM riders r
		WHERE r.is_approved
		  AND EXISTS (SELECT 1 FROM vehicles v WHERE v.rider_id = r.id)
		ORDER BY r.average_rating DESC, r.review_count DESC, r.id`

	args := pgx.NamedArgs{"pickup_date": pickup, "end_date": end}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.RiderRepo.ListCandidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		err := rows.Scan(
			&c.ID, &c.Name, &c.Mobile, &c.Email, &c.IsApproved,
			&c.VehicleCount, &c.ReviewCount, &c.AverageRating,
			&c.CreatedAt, &c.UpdatedAt, &c.CurrentlyBusy,
		)
		if err != nil {
			return nil, fmt.Errorf("repo.RiderRepo.ListCandidates: scan: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RiderRepo.ListCandidates: rows: %w", err)
	}
	return candidates, nil
}

// Unapproved returns the given ids that are not currently approved riders.
func (r *pgRiderRepo) Unapproved(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT candidate.id
		FROM unnest(@ids::uuid[]) AS candidate(id)
		WHERE NOT EXISTS (
			SELECT 1 FROM riders r WHERE r.id = candidate.id AND r.is_approved
		)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.RiderRepo.Unapproved: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.RiderRepo.Unapproved: scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RiderRepo.Unapproved: rows: %w", err)
	}
	return out, nil
}

// SetApproval flips the approval flag and returns the updated rider.
func (r *pgRiderRepo) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (domain.Rider, error) {
	const q = `
		UPDATE riders r
		SET is_approved = @approved, updated_at = now()
		WHERE r.id = @id
		RETURNING ` + riderColumns

	rider, err := scanRider(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "approved": approved}))
	if err != nil {
		return domain.Rider{}, fmt.Errorf("repo.RiderRepo.SetApproval: %w", err)
	}
	return rider, nil
}

// scanRider maps a single database row into a domain.Rider.
func scanRider(s scanner) (domain.Rider, error) {
	var rider domain.Rider
	err := s.Scan(
		&rider.ID, &rider.Name, &rider.Mobile, &rider.Email, &rider.IsApproved,
		&rider.VehicleCount, &rider.ReviewCount, &rider.AverageRating,
		&rider.CreatedAt, &rider.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rider{}, domain.ErrNotFound
		}
		return domain.Rider{}, err
	}
	return rider, nil
}
