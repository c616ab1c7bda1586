package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/ride-dispatch/internal/domain"
	"github.com/pkordes/ride-dispatch/internal/middleware"
	"github.com/pkordes/ride-dispatch/internal/service"
)

// createBookingRequest is the wire shape of POST /bookings.
type createBookingRequest struct {
	PickupLocation    string  `json:"pickup_location"`
	DropLocation      string  `json:"drop_location"`
	Distance          float64 `json:"distance"`
	PickupDate        string  `json:"pickup_date"`
	RideEndDate       string  `json:"ride_end_date"`
	MaleCount         int     `json:"male_count"`
	FemaleCount       int     `json:"female_count"`
	KidsCount         int     `json:"kids_count"`
	CategoryID        string  `json:"category_id"`
	ACType            string  `json:"ac_type"`
	AdditionalDetails string  `json:"additional_details"`
}

// bookingResponse is the wire shape of a booking in every response.
type bookingResponse struct {
	ID          uuid.UUID `json:"id"`
	PassengerID uuid.UUID `json:"passenger_id"`

	PickupLocation string    `json:"pickup_location"`
	DropLocation   string    `json:"drop_location"`
	Distance       float64   `json:"distance"`
	PickupDate     time.Time `json:"pickup_date"`
	RideEndDate    time.Time `json:"ride_end_date"`
	JourneyDays    int       `json:"journey_days"`

	MaleCount       int `json:"male_count"`
	FemaleCount     int `json:"female_count"`
	KidsCount       int `json:"kids_count"`
	TotalPassengers int `json:"total_passengers"`

	CategoryID        uuid.UUID `json:"category_id"`
	ACType            string    `json:"ac_type"`
	AdditionalDetails string    `json:"additional_details,omitempty"`

	InitialPrice float64  `json:"initial_price"`
	FinalPrice   *float64 `json:"final_price,omitempty"`

	Status        string      `json:"status"`
	RiderID       *uuid.UUID  `json:"rider_id,omitempty"`
	OfferedRiders []uuid.UUID `json:"offered_riders,omitempty"`
	AcceptedAt    *time.Time  `json:"accepted_at,omitempty"`

	CancelledBy  *string    `json:"cancelled_by,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// historyEntryResponse is the wire shape of one audit trail record.
type historyEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Event     string    `json:"event"`
	Role      string    `json:"role"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateBooking handles POST /bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := requestToBookingInput(req)
	if err != nil {
		respondRequestError(w, err.Error())
		return
	}

	created, err := s.bookings.Create(r.Context(), actor, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, bookingToResponse(created))
}

// GetBooking handles GET /bookings/{bookingID}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	booking, err := s.bookings.GetByID(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(booking))
}

// ListBookings handles GET /bookings.
// Supports ?status=, ?passenger_id=, and ?rider_id= query filters.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())

	var f domain.BookingFilter
	f.Status = domain.Status(r.URL.Query().Get("status"))
	if raw := r.URL.Query().Get("passenger_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondRequestError(w, "invalid passenger_id")
			return
		}
		f.PassengerID = id
	}
	if raw := r.URL.Query().Get("rider_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondRequestError(w, "invalid rider_id")
			return
		}
		f.RiderID = id
	}

	bookings, err := s.bookings.List(r.Context(), actor, f)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingsToResponse(bookings))
}

// ListPassengerBookings handles GET /passengers/{passengerID}/bookings.
func (s *Server) ListPassengerBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	passengerID, ok := pathID(w, r, "passengerID")
	if !ok {
		return
	}

	bookings, err := s.bookings.ListForPassenger(r.Context(), actor, passengerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingsToResponse(bookings))
}

// ListRiderBookings handles GET /riders/{riderID}/bookings.
func (s *Server) ListRiderBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	riderID, ok := pathID(w, r, "riderID")
	if !ok {
		return
	}

	bookings, err := s.bookings.ListForRider(r.Context(), actor, riderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingsToResponse(bookings))
}

// GetBookingHistory handles GET /bookings/{bookingID}/history.
func (s *Server) GetBookingHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	entries, err := s.bookings.History(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}

	data := make([]historyEntryResponse, len(entries))
	for i, e := range entries {
		data[i] = historyEntryResponse{
			ID:        e.ID,
			Event:     e.Event,
			Role:      string(e.Role),
			Details:   e.Details,
			Timestamp: e.Timestamp,
		}
	}
	respondJSON(w, http.StatusOK, data)
}

// UpdateBookingStatus handles PATCH /bookings/{bookingID}/status.
func (s *Server) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.bookings.UpdateStatus(r.Context(), actor, id, domain.Status(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(updated))
}

// CancelBooking handles POST /bookings/{bookingID}/cancel.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFrom(r.Context())
	id, ok := pathID(w, r, "bookingID")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// An empty body is a legitimate "no reason given" cancel.
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	cancelled, err := s.bookings.Cancel(r.Context(), actor, id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookingToResponse(cancelled))
}

// --- mapping helpers --------------------------------------------------------

// requestToBookingInput converts the wire shape into the service input.
// Only wire-level concerns are checked here; business validation is the
// service's job.
func requestToBookingInput(req createBookingRequest) (service.CreateBookingInput, error) {
	pickupDate, err := parseTime(req.PickupDate)
	if err != nil {
		return service.CreateBookingInput{}, errInvalidField("pickup_date must be an RFC 3339 timestamp")
	}
	rideEndDate, err := parseTime(req.RideEndDate)
	if err != nil {
		return service.CreateBookingInput{}, errInvalidField("ride_end_date must be an RFC 3339 timestamp")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return service.CreateBookingInput{}, errInvalidField("category_id must be a UUID")
	}

	return service.CreateBookingInput{
		PickupLocation:    req.PickupLocation,
		DropLocation:      req.DropLocation,
		Distance:          req.Distance,
		PickupDate:        pickupDate,
		RideEndDate:       rideEndDate,
		MaleCount:         req.MaleCount,
		FemaleCount:       req.FemaleCount,
		KidsCount:         req.KidsCount,
		CategoryID:        categoryID,
		ACType:            domain.ACType(req.ACType),
		AdditionalDetails: req.AdditionalDetails,
	}, nil
}

// bookingToResponse converts a domain.Booking into its wire shape.
func bookingToResponse(b domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:                b.ID,
		PassengerID:       b.PassengerID,
		PickupLocation:    b.PickupLocation,
		DropLocation:      b.DropLocation,
		Distance:          b.Distance,
		PickupDate:        b.PickupDate,
		RideEndDate:       b.RideEndDate,
		JourneyDays:       b.JourneyDays,
		MaleCount:         b.MaleCount,
		FemaleCount:       b.FemaleCount,
		KidsCount:         b.KidsCount,
		TotalPassengers:   b.TotalPassengers,
		CategoryID:        b.CategoryID,
		ACType:            string(b.ACType),
		AdditionalDetails: b.AdditionalDetails,
		InitialPrice:      b.InitialPrice,
		FinalPrice:        b.FinalPrice,
		Status:            string(b.Status),
		RiderID:           b.RiderID,
		OfferedRiders:     b.OfferedRiders,
		AcceptedAt:        b.AcceptedAt,
		CancelReason:      b.CancelReason,
		CancelledAt:       b.CancelledAt,
	}
	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}
	resp.CreatedAt = b.CreatedAt
	resp.UpdatedAt = b.UpdatedAt
	return resp
}

func bookingsToResponse(bookings []domain.Booking) []bookingResponse {
	data := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		data[i] = bookingToResponse(b)
	}
	return data
}

// errInvalidField is a plain error for wire-level field failures.
type errInvalidField string

func (e errInvalidField) Error() string { return string(e) }
