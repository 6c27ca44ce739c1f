package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"time"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// GetAvailability returns the bookable slots for one calendar date.
// GET /v1/availability?date=YYYY-MM-DD
func (h *Handlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if !dateRe.MatchString(dateStr) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", CodeInvalidInput)
		return
	}

	slots, err := h.scheduling.ResolveSlots(r.Context(), dateStr)
	if err != nil {
		var parseErr *time.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusBadRequest, "date must be a valid YYYY-MM-DD", CodeInvalidInput)
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":  dateStr,
		"slots": slots,
	})
}
