package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ListRules returns availability rules, optionally filtered by weekday.
// GET /v1/admin/availability?day=1&active_only=true
func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	day := -1
	if v := r.URL.Query().Get("day"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 6 {
			writeError(w, http.StatusBadRequest, "day must be 0-6", CodeInvalidInput)
			return
		}
		day = n
	}
	activeOnly := r.URL.Query().Get("active_only") == "true"

	var rules []domain.AvailabilityRule
	var err error
	if day >= 0 {
		rules, err = h.scheduling.ListRules(r.Context(), day, activeOnly)
	} else {
		var all []domain.AvailabilityRule
		for d := 0; d <= 6 && err == nil; d++ {
			var dayRules []domain.AvailabilityRule
			dayRules, err = h.scheduling.ListRules(r.Context(), d, activeOnly)
			all = append(all, dayRules...)
		}
		rules = all
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rules == nil {
		rules = []domain.AvailabilityRule{}
	}

	writeJSON(w, http.StatusOK, rules)
}

// AddRule creates a weekly availability rule.
// POST /v1/admin/availability
func (h *Handlers) AddRule(w http.ResponseWriter, r *http.Request) {
	var req domain.NewRule
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", CodeInvalidInput)
		return
	}

	rule, err := h.scheduling.AddRule(r.Context(), req)
	if err != nil {
		var malformed *domain.MalformedTimeError
		if errors.As(err, &malformed) {
			writeError(w, http.StatusBadRequest, malformed.Error(), CodeInvalidInput)
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rule)
}

// DeleteRule removes a rule.
// DELETE /v1/admin/availability/{id}
func (h *Handlers) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduling.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetRuleVisibility toggles the UI visibility hint on a rule. Slot
// generation ignores it.
// PATCH /v1/admin/availability/{id}/visibility
func (h *Handlers) SetRuleVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		writeError(w, http.StatusBadRequest, "visible is required", CodeInvalidInput)
		return
	}

	if err := h.scheduling.SetRuleVisibility(r.Context(), chi.URLParam(r, "id"), *req.Visible); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"visible": *req.Visible})
}

// GetAgenda returns active rules plus non-cancelled appointments in a range.
// GET /v1/admin/agenda?from=RFC3339&to=RFC3339
func (h *Handlers) GetAgenda(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be RFC3339", CodeInvalidInput)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be RFC3339", CodeInvalidInput)
		return
	}

	rules, appointments, err := h.scheduling.AgendaData(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rules == nil {
		rules = []domain.AvailabilityRule{}
	}
	if appointments == nil {
		appointments = []domain.Appointment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"availability": rules,
		"appointments": appointments,
	})
}
