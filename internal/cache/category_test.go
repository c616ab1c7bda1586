package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

type mockCategoryRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error)
	list    func(ctx context.Context) ([]domain.VehicleCategory, error)
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error) {
	return m.getByID(ctx, id)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	return m.list(ctx)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

func TestCategoryCache_NilClientPassesThrough(t *testing.T) {
	want := domain.VehicleCategory{ID: uuid.New(), Name: "Sedan", MinPricePerKm: 12}
	calls := 0
	source := &mockCategoryRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.VehicleCategory, error) {
			calls++
			assert.Equal(t, want.ID, id)
			return want, nil
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCategoryCache(nil, source, time.Minute, log)

	got, err := c.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = c.GetByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "without Redis every read hits the source")
}

func TestCategoryCache_ListAlwaysHitsSource(t *testing.T) {
	want := []domain.VehicleCategory{{ID: uuid.New(), Name: "SUV", MinPricePerKm: 18}}
	source := &mockCategoryRepo{
		list: func(context.Context) ([]domain.VehicleCategory, error) { return want, nil },
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCategoryCache(nil, source, time.Minute, log)

	got, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
