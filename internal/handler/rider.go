package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/middleware"
)

// riderResponse is the wire shape of a rider profile.
type riderResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Mobile        string    `json:"mobile"`
	Email         string    `json:"email"`
	IsApproved    bool      `json:"is_approved"`
	VehicleCount  int       `json:"vehicle_count"`
	ReviewCount   int       `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// candidateResponse is a rider annotated for a dispatch decision.
type candidateResponse struct {
	riderResponse
	CurrentlyBusy bool `json:"currently_busy"`
}

// GetRider handles GET /riders/{riderID}.
func (s *Server) GetRider(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "riderID")
	if !ok {
		return
	}

	rider, err := s.riders.Get(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, riderToResponse(rider))
}

// ListRiders handles GET /riders.
func (s *Server) ListRiders(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	riders, err := s.riders.List(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}

	data := make([]riderResponse, len(riders))
	for i, rd := range riders {
		data[i] = riderToResponse(rd)
	}
	respondJSON(w, http.StatusOK, data)
}

// SetRiderApproval handles PATCH /riders/{riderID}/approval.
func (s *Server) SetRiderApproval(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "riderID")
	if !ok {
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	rider, err := s.riders.SetApproval(r.Context(), actor, id, req.Approved)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, riderToResponse(rider))
}

// riderToResponse converts a domain.Rider into its wire shape.
func riderToResponse(rd domain.Rider) riderResponse {
	return riderResponse{
		ID:            rd.ID,
		Name:          rd.Name,
		Mobile:        rd.Mobile,
		Email:         rd.Email,
		IsApproved:    rd.IsApproved,
		VehicleCount:  rd.VehicleCount,
		ReviewCount:   rd.ReviewCount,
		AverageRating: rd.AverageRating,
		CreatedAt:     rd.CreatedAt,
		UpdatedAt:     rd.UpdatedAt,
	}
}
