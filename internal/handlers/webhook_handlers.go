package handlers

import (
	"net/http"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

// MercadoPagoWebhook receives payment notifications. The gateway retries
// aggressively on anything but a 2xx, so this handler always acknowledges
// with 200 and keeps internal failures in the logs.
// POST /v1/webhooks/mercadopago?type=payment&data.id=123
func (h *Handlers) MercadoPagoWebhook(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	notifType := query.Get("type")
	paymentID := query.Get("data.id")
	if paymentID == "" {
		paymentID = query.Get("id")
	}

	logger.InfoContext(r.Context(), "Gateway notification received", "type", notifType, "payment_id", paymentID)

	if notifType != "payment" || paymentID == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	// The gateway redelivers notifications; claim the payment ID before
	// processing so replays become no-ops even across instances.
	if h.dedupe != nil {
		won, err := h.dedupe.SetNX(r.Context(), "webhook:mp:"+paymentID, "1", 24*time.Hour)
		if err != nil {
			logger.WarnContext(r.Context(), "Webhook dedupe unavailable, processing anyway", "error", err)
		} else if !won {
			logger.InfoContext(r.Context(), "Duplicate notification skipped", "payment_id", paymentID)
			writeJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
	}

	if err := h.payment.ConfirmPayment(r.Context(), paymentID); err != nil {
		logger.ErrorContext(r.Context(), "Failed to process payment notification",
			"error", err, "payment_id", paymentID)
		// Release the dedupe claim so the gateway's next retry is processed.
		if h.dedupe != nil {
			if delErr := h.dedupe.Del(r.Context(), "webhook:mp:"+paymentID); delErr != nil {
				logger.WarnContext(r.Context(), "Failed to release dedupe key", "error", delErr, "payment_id", paymentID)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
