package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/middleware"
)

// dispatchOfferRequest is the wire shape of POST /bookings/{id}/dispatch.
type dispatchOfferRequest struct {
	RiderIDs   []string `json:"rider_ids"`
	FinalPrice float64  `json:"final_price"`
}

// DispatchOffer handles POST /bookings/{bookingID}/dispatch.
func (s *Server) DispatchOffer(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	bookingID, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	var req dispatchOfferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	riderIDs := make([]uuid.UUID, len(req.RiderIDs))
	for i, raw := range req.RiderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondRequestError(w, "rider_ids must be UUIDs")
			return
		}
		riderIDs[i] = id
	}

	booking, err := s.offers.Dispatch(r.Context(), actor, bookingID, riderIDs, req.FinalPrice)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(booking))
}

// AcceptOffer handles POST /bookings/{bookingID}/accept.
func (s *Server) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	bookingID, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := s.offers.Accept(r.Context(), actor, bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(booking))
}

// RejectOffer handles POST /bookings/{bookingID}/reject.
func (s *Server) RejectOffer(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	bookingID, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := s.offers.Reject(r.Context(), actor, bookingID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(booking))
}

// ListCandidates handles GET /bookings/{bookingID}/candidates.
func (s *Server) ListCandidates(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	bookingID, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	candidates, err := s.availability.CandidatesFor(r.Context(), actor, bookingID)
	if err != nil {
		respondError(w, err)
		return
	}

	data := make([]candidateResponse, len(candidates))
	for i, c := range candidates {
		data[i] = candidateResponse{
			riderResponse: riderToResponse(c.Rider),
			CurrentlyBusy: c.CurrentlyBusy,
		}
	}
	respondJSON(w, http.StatusOK, data)
}
