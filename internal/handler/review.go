package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/middleware"
)

// submitReviewRequest is the wire shape of POST /bookings/{id}/review.
type submitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// reviewResponse is the wire shape of a review.
type reviewResponse struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	RiderID     uuid.UUID `json:"rider_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// reviewListResponse wraps a review page with its pagination block.
type reviewListResponse struct {
	Data       []reviewResponse `json:"data"`
	Pagination paginationBlock  `json:"pagination"`
}

type paginationBlock struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// SubmitReview handles POST /bookings/{bookingID}/review.
func (s *Server) SubmitReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	bookingID, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	var req submitReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := s.reviews.Submit(r.Context(), actor, bookingID, req.Rating, req.Comment)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, reviewToResponse(review))
}

// GetBookingReview handles GET /bookings/{bookingID}/review.
func (s *Server) GetBookingReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	bookingID, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	review, err := s.reviews.GetByBooking(r.Context(), actor, bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviewToResponse(review))
}

// GetReview handles GET /reviews/{reviewID}.
func (s *Server) GetReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	review, err := s.reviews.Get(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reviewToResponse(review))
}

// ListReviews handles GET /reviews.
// Supports ?rating=, ?rider_id=, ?page=, and ?limit= query parameters
// (defaults: page=1, limit=20, max=100).
func (s *Server) ListReviews(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	var f domain.ReviewFilter
	if raw := r.URL.Query().Get("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			respondRequestError(w, "invalid rating")
			return
		}
		f.Rating = rating
	}
	if raw := r.URL.Query().Get("rider_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondRequestError(w, "invalid rider_id")
			return
		}
		f.RiderID = id
	}

	s.listReviews(w, r, actor, f)
}

// ListRiderReviews handles GET /riders/{riderID}/reviews.
func (s *Server) ListRiderReviews(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	riderID, ok := pathID(w, r, "riderID")
	if !ok {
		return
	}

	s.listReviews(w, r, actor, domain.ReviewFilter{RiderID: riderID})
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request, actor domain.Actor, f domain.ReviewFilter) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	reviews, total, err := s.reviews.List(r.Context(), actor, f, params)
	if err != nil {
		respondError(w, err)
		return
	}

	data := make([]reviewResponse, len(reviews))
	for i, review := range reviews {
		data[i] = reviewToResponse(review)
	}
	respondJSON(w, http.StatusOK, reviewListResponse{
		Data: data,
		Pagination: paginationBlock{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// DeleteReview handles DELETE /reviews/{reviewID}.
func (s *Server) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	if err := s.reviews.Delete(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter; bad values are ignored
// in favor of the pagination defaults.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// reviewToResponse converts a domain.Review into its wire shape.
func reviewToResponse(review domain.Review) reviewResponse {
	return reviewResponse{
		ID:          review.ID,
		BookingID:   review.BookingID,
		PassengerID: review.PassengerID,
		RiderID:     review.RiderID,
		Rating:      review.Rating,
		Comment:     review.Comment,
		CreatedAt:   review.CreatedAt,
	}
}
