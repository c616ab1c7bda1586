package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/repo"
)

// CategoryService exposes the vehicle category catalog. Categories are
// reference data readable by every authenticated role; the repo handed in
// here is usually the cache-wrapped one.
type CategoryService struct {
	categories repo.CategoryRepo
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories repo.CategoryRepo) *CategoryService {
	return &CategoryService{categories: categories}
}

// Get returns a single vehicle category.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (domain.VehicleCategory, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return domain.VehicleCategory{}, fmt.Errorf("service.CategoryService.Get: %w", err)
	}
	return category, nil
}

// List returns all vehicle categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.VehicleCategory, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.List: %w", err)
	}
	if categories == nil {
		return []domain.VehicleCategory{}, nil
	}
	return categories, nil
}
