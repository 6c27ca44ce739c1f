package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/go-chi/chi/v5"
)

type claimRequest struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	GuestEmail string    `json:"guest_email,omitempty"`
}

// ClaimAppointment reserves a slot as a pending appointment.
// POST /v1/appointments with an authenticated session or guest_email in the body.
func (h *Handlers) ClaimAppointment(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", CodeInvalidInput)
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
		writeError(w, http.StatusBadRequest, "start_time and end_time are required and must be ordered", CodeInvalidInput)
		return
	}

	booker := h.bookerFromRequest(r, req.GuestEmail)
	appointment, err := h.scheduling.ClaimSlot(r.Context(), req.StartTime, req.EndTime, booker)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// ListMyAppointments returns the authenticated client's appointments.
// GET /v1/appointments
func (h *Handlers) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Session required", CodeUnauthorized)
		return
	}

	limit, offset := parsePagination(r)
	appointments, err := h.scheduling.ListClientAppointments(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if appointments == nil {
		appointments = []domain.Appointment{}
	}

	writeJSON(w, http.StatusOK, appointments)
}

// CancelAppointment cancels the caller's own appointment.
// DELETE /v1/appointments/{id}
func (h *Handlers) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booker := h.bookerFromRequest(r, r.URL.Query().Get("guest_email"))
	if err := h.scheduling.CancelAppointment(r.Context(), id, booker); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// CreateCheckout opens a hosted checkout for a claimed appointment.
// POST /v1/appointments/{id}/checkout
func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		GuestEmail string `json:"guest_email,omitempty"`
	}
	// Body is optional for authenticated clients.
	_ = json.NewDecoder(r.Body).Decode(&body)

	booker := h.bookerFromRequest(r, body.GuestEmail)
	checkout, err := h.payment.CreateCheckout(r.Context(), id, booker)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkout)
}

// bookerFromRequest prefers the authenticated session; a guest email is
// only honored when there is no session.
func (h *Handlers) bookerFromRequest(r *http.Request, guestEmail string) domain.Booker {
	if claims := getClaims(r); claims != nil {
		return domain.ClientBooker(claims.Sub)
	}
	if guestEmail != "" {
		return domain.GuestBooker(guestEmail)
	}
	return domain.Booker{}
}
