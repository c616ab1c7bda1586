package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

const reviewColumns = `id, booking_id, passenger_id, rider_id, rating, comment, created_at`

// ReviewRepo defines the persistence operations for reviews and the rider
// rating aggregate they feed. The reviews table is the source of truth: the
// rider's review_count and average_rating are always recomputed from the
// remaining rows, never kept as drifting running sums, so deletion can
// reverse a review's effect exactly.
type ReviewRepo interface {
	// Create inserts the review, recomputes the rider's rating aggregate, and
	// appends the booking history entry — all in one transaction.
	// Returns domain.ErrValidation if a review already exists for the booking.
	Create(ctx context.Context, review domain.Review, entry domain.HistoryEntry) (domain.Review, error)

	// GetByID retrieves a single review. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error)

	// GetByBookingID retrieves the review for a booking, if any.
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (domain.Review, error)

	// List returns reviews matching the filter, newest first, with the total
	// count for pagination.
	List(ctx context.Context, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error)

	// Delete removes the review and recomputes the rider's rating aggregate
	// from the remaining reviews in one transaction.
	// Returns domain.ErrNotFound if the review does not exist.
	Delete(ctx context.Context, id uuid.UUID) (domain.Rider, error)
}

// pgReviewRepo is the Postgres implementation of ReviewRepo.
type pgReviewRepo struct {
	db db
}

// NewReviewRepo constructs a ReviewRepo backed by the provided db connection.
func NewReviewRepo(db db) ReviewRepo {
	return &pgReviewRepo{db: db}
}

// Create inserts the review and folds it into the rider's aggregate.
func (r *pgReviewRepo) Create(ctx context.Context, review domain.Review, entry domain.HistoryEntry) (domain.Review, error) {
	const q = `
		INSERT INTO reviews (booking_id, passenger_id, rider_id, rating, comment)
		VALUES (@booking_id, @passenger_id, @rider_id, @rating, @comment)
		RETURNING ` + reviewColumns

	args := pgx.NamedArgs{
		"booking_id":   review.BookingID,
		"passenger_id": review.PassengerID,
		"rider_id":     review.RiderID,
		"rating":       review.Rating,
		"comment":      review.Comment,
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := scanReview(tx.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: review already submitted for this booking: %w", domain.ErrValidation)
		}
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", err)
	}
	if err := recomputeRating(ctx, tx, created.RiderID); err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", err)
	}
	if err := appendHistory(ctx, tx, created.BookingID, entry); err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: commit: %w", err)
	}
	return created, nil
}

// GetByID retrieves a review by primary key.
func (r *pgReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = @id`

	review, err := scanReview(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.GetByID: %w", err)
	}
	return review, nil
}

// GetByBookingID retrieves the review for a booking, if any.
func (r *pgReviewRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (domain.Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = @booking_id`

	review, err := scanReview(r.db.QueryRow(ctx, q, pgx.NamedArgs{"booking_id": bookingID}))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.GetByBookingID: %w", err)
	}
	return review, nil
}

// List returns reviews matching the filter, newest first, plus the total count.
func (r *pgReviewRepo) List(ctx context.Context, f domain.ReviewFilter, page domain.PaginationParams) ([]domain.Review, int64, error) {
	q := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE (@rating = 0 OR rating = @rating)
		  AND (@rider_id = '00000000-0000-0000-0000-000000000000'::uuid OR rider_id = @rider_id)
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"rating":   f.Rating,
		"rider_id": f.RiderID,
		"limit":    page.Limit,
		"offset":   page.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewRepo.List: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReviewRepo.List: scan: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewRepo.List: rows: %w", err)
	}

	var total int64
	const countQ = `
		SELECT count(*) FROM reviews
		WHERE (@rating = 0 OR rating = @rating)
		  AND (@rider_id = '00000000-0000-0000-0000-000000000000'::uuid OR rider_id = @rider_id)`
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"rating": f.Rating, "rider_id": f.RiderID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ReviewRepo.List: count: %w", err)
	}
	return reviews, total, nil
}

// Delete removes the review and recomputes the rider's aggregate from the
// remaining reviews, returning the rider with the fresh numbers.
func (r *pgReviewRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Rider, error) {
	const q = `DELETE FROM reviews WHERE id = @id RETURNING rider_id`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Rider{}, fmt.Errorf("repo.ReviewRepo.Delete: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var riderID uuid.UUID
	if err := tx.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&riderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rider{}, fmt.Errorf("repo.ReviewRepo.Delete: %w", domain.ErrNotFound)
		}
		return domain.Rider{}, fmt.Errorf("repo.ReviewRepo.Delete: %w", err)
	}
	if err := recomputeRating(ctx, tx, riderID); err != nil {
		return domain.Rider{}, fmt.Errorf("repo.ReviewRepo.Delete: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Rider{}, fmt.Errorf("repo.ReviewRepo.Delete: commit: %w", err)
	}

	rider, err := NewRiderRepo(r.db).GetByID(ctx, riderID)
	if err != nil {
		return domain.Rider{}, fmt.Errorf("repo.ReviewRepo.Delete: %w", err)
	}
	return rider, nil
}

// recomputeRating refreshes a rider's aggregate from the reviews table.
// Computing from scratch (rather than nudging running sums) keeps submit and
// delete symmetrical: removing a review restores exactly the prior mean.
func recomputeRating(ctx context.Context, tx pgx.Tx, riderID uuid.UUID) error {
	const q = `
		UPDATE riders
		SET review_count   = (SELECT count(*) FROM reviews WHERE rider_id = @rider_id),
		    average_rating = COALESCE((SELECT avg(rating) FROM reviews WHERE rider_id = @rider_id), 0),
		    updated_at     = now()
		WHERE id = @rider_id`

	tag, err := tx.Exec(ctx, q, pgx.NamedArgs{"rider_id": riderID})
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recompute rating: rider %s: %w", riderID, domain.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// scanReview maps a single database row into a domain.Review.
func scanReview(s scanner) (domain.Review, error) {
	var review domain.Review
	err := s.Scan(
		&review.ID, &review.BookingID, &review.PassengerID, &review.RiderID,
		&review.Rating, &review.Comment, &review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}
