package mailer

import "time"

// Service sends the transactional mail the booking flow produces.
type Service interface {
	SendAppointmentConfirmed(toEmail string, start, end time.Time, price float64) error
	SendCheckoutLink(toEmail, checkoutURL string, start time.Time, price float64) error
}
