package mailer

import (
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

// DevMailer prints emails to the log instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendAppointmentConfirmed(toEmail string, start, end time.Time, price float64) error {
	logger.Info("[DEV MAIL] Appointment confirmed",
		"to", toEmail,
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"price", price,
	)
	return nil
}

func (d *DevMailer) SendCheckoutLink(toEmail, checkoutURL string, start time.Time, price float64) error {
	logger.Info("[DEV MAIL] Checkout link",
		"to", toEmail,
		"checkout_url", checkoutURL,
		"start", start.Format(time.RFC3339),
		"price", price,
	)
	return nil
}
