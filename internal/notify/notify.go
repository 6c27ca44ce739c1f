package notify

import (
	"encoding/json"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/mailer"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/events"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

// Notifier turns appointment events into transactional email. It only knows
// the guest's address directly; for authenticated clients the confirmation
// email is sent by the auth provider's side, so events without a guest email
// are logged and skipped.
type Notifier struct {
	bus    events.Subscriber
	mailer mailer.Service
}

func New(bus events.Subscriber, mailer mailer.Service) *Notifier {
	return &Notifier{bus: bus, mailer: mailer}
}

func (n *Notifier) Start() error {
	if err := n.bus.QueueSubscribe(events.AppointmentConfirmed, "notify", n.handleConfirmed); err != nil {
		return err
	}
	return n.bus.QueueSubscribe(events.CheckoutCreated, "notify", n.handleCheckoutCreated)
}

func (n *Notifier) handleConfirmed(msg *events.Message) {
	var event events.AppointmentConfirmedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Bad confirmation event payload", "error", err, "subject", msg.Subject)
		return
	}

	if event.GuestEmail == "" {
		logger.Debug("No guest email on confirmed appointment, skipping mail", "appointment_id", event.AppointmentID)
		return
	}

	if err := n.mailer.SendAppointmentConfirmed(event.GuestEmail, event.StartTime, event.EndTime, event.Price); err != nil {
		logger.Error("Failed to send confirmation email",
			"error", err,
			"appointment_id", event.AppointmentID,
			"to", event.GuestEmail,
		)
	}
}

func (n *Notifier) handleCheckoutCreated(msg *events.Message) {
	var event events.CheckoutCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Bad checkout event payload", "error", err, "subject", msg.Subject)
		return
	}

	if event.GuestEmail == "" {
		return
	}

	if err := n.mailer.SendCheckoutLink(event.GuestEmail, event.CheckoutURL, event.StartTime, event.Price); err != nil {
		logger.Error("Failed to send checkout email",
			"error", err,
			"appointment_id", event.AppointmentID,
			"to", event.GuestEmail,
		)
	}
}
