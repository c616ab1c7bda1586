package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// categoryResponse is the wire shape of a vehicle category.
type categoryResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	MinPricePerKm float64   `json:"min_price_per_km"`
	CreatedAt     time.Time `json:"created_at"`
}

// GetCategory handles GET /categories/{categoryID}.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	category, err := s.categories.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryToResponse(category))
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.categories.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	data := make([]categoryResponse, len(categories))
	for i, c := range categories {
		data[i] = categoryToResponse(c)
	}
	respondJSON(w, http.StatusOK, data)
}

func categoryToResponse(c domain.VehicleCategory) categoryResponse {
	return categoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		MinPricePerKm: c.MinPricePerKm,
		CreatedAt:     c.CreatedAt,
	}
}
