package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

// ErrorResponse is the structured JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeSlotTaken        = "SLOT_TAKEN"
	CodeNotCancellable   = "NOT_CANCELLABLE"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodePaymentGateway   = "PAYMENT_GATEWAY_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Slot
// contention is user-actionable (pick another time); store failures get a
// generic retry-later, never an empty success.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotTaken):
		writeError(w, http.StatusConflict, "This time is no longer available, please pick another slot", CodeSlotTaken)
	case errors.Is(err, domain.ErrNotCancellable):
		writeError(w, http.StatusConflict, "This appointment can no longer be cancelled", CodeNotCancellable)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "A valid identity is required", CodeUnauthorized)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", CodeNotFound)
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Temporarily unavailable, please try again shortly", CodeStoreUnavailable)
	case errors.Is(err, domain.ErrPaymentGateway):
		writeError(w, http.StatusBadGateway, "Payment provider error, please try again", CodePaymentGateway)
	default:
		var malformed *domain.MalformedTimeError
		if errors.As(err, &malformed) {
			writeError(w, http.StatusInternalServerError, "Availability configuration is invalid", CodeInternalError)
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal error", CodeInternalError)
	}
}
