package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// CategoryRepo defines read access to vehicle categories. The dispatch core
// consults a category exactly once per booking creation, to anchor the
// initial price quote.
type CategoryRepo interface {
	// GetByID retrieves a single vehicle category.
	// Returns domain.ErrNotFound if no category with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error)

	// List returns all vehicle categories ordered by name.
	List(ctx context.Context) ([]domain.VehicleCategory, error)
}

// pgCategoryRepo is the Postgres implementation of CategoryRepo.
type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

// GetByID retrieves a vehicle category by primary key.
func (r *pgCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error) {
	const q = `
		SELECT id, name, min_price_per_km, created_at
		FROM vehicle_categories
		WHERE id = @id`

	var c domain.VehicleCategory
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).
		Scan(&c.ID, &c.Name, &c.MinPricePerKm, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VehicleCategory{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", domain.ErrNotFound)
		}
		return domain.VehicleCategory{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", err)
	}
	return c, nil
}

// List returns all vehicle categories ordered by name.
func (r *pgCategoryRepo) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	const q = `
		SELECT id, name, min_price_per_km, created_at
		FROM vehicle_categories
		ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: %w", err)
	}
	defer rows.Close()

	var categories []domain.VehicleCategory
	for rows.Next() {
		var c domain.VehicleCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.MinPricePerKm, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.CategoryRepo.List: scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: rows: %w", err)
	}
	return categories, nil
}
