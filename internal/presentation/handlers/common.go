package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError maps the core error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrUnknownVenue):
		writeError(w, http.StatusBadRequest, "unknown_venue", err.Error())
	case errors.Is(err, entities.ErrVenueMismatch):
		writeError(w, http.StatusBadRequest, "venue_mismatch", err.Error())
	case errors.Is(err, entities.ErrSlippageTooLoose):
		writeError(w, http.StatusBadRequest, "slippage_too_loose", err.Error())
	case errors.Is(err, entities.ErrInsufficientAllowance):
		writeError(w, http.StatusConflict, "insufficient_allowance", err.Error())
	case errors.Is(err, entities.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient_balance", err.Error())
	case errors.Is(err, entities.ErrVenueExecutionFailed):
		writeError(w, http.StatusBadGateway, "venue_execution_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
