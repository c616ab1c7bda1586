package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/ride-dispatch/internal/domain"
)

// errorResponse is the uniform error envelope for every non-2xx reply.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError maps a service error onto the HTTP status and error code the
// API contract promises. Unknown errors become an opaque 500; the detail goes
// to the log, not the client.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{errorDetail{"not_found", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{errorDetail{"forbidden", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrInvalidState):
		respondJSON(w, http.StatusConflict, errorResponse{errorDetail{"invalid_state", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{errorDetail{"conflict", unwrapMessage(err)}})
	default:
		slog.Error("unhandled service error", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{"internal", "internal server error"}})
	}
}

// respondRequestError rejects a request before it reaches the service layer
// (malformed body, bad path parameter).
func respondRequestError(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{"validation_error", message}})
}

// decodeJSON parses the request body into dst, rejecting unknown fields.
// The bool reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondRequestError(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// unwrapMessage extracts the human-readable part from a wrapped service error.
// e.g. "service.ReviewService.Submit: validation error: rating must be
// between 1 and 5" → "validation error: rating must be between 1 and 5".
// Call-site prefixes identify code paths, which clients do not need.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		head, tail, ok := strings.Cut(msg, ": ")
		if !ok {
			return msg
		}
		if !strings.HasPrefix(head, "service.") && !strings.HasPrefix(head, "repo.") {
			return msg
		}
		msg = tail
	}
}
