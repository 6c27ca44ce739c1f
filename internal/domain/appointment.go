package domain

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// Appointment occupies one slot. Exactly one of ClientID/GuestEmail is set,
// per the Booker that claimed it. PaymentID is empty until the gateway
// confirms payment.
type Appointment struct {
	ID         string            `json:"id"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Status     AppointmentStatus `json:"status"`
	ClientID   *string           `json:"client_id,omitempty"`
	GuestEmail string            `json:"guest_email,omitempty"`
	Price      float64           `json:"price"`
	PaymentID  string            `json:"payment_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CanConfirm reports whether the pending->confirmed transition applies.
// Confirmed and cancelled are terminal.
func (a *Appointment) CanConfirm() bool {
	return a.Status == AppointmentPending
}

func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentConfirmed || a.Status == AppointmentCancelled
}

// BookerEmail returns the address to notify, whichever side of the
// client/guest union is populated. Empty for clients whose email is only
// known to the auth provider.
func (a *Appointment) BookerEmail(clientEmail string) string {
	if a.ClientID != nil {
		return clientEmail
	}
	return a.GuestEmail
}

// Blocks reports whether an instant falls inside this appointment's window.
// The end instant is exclusive: a slot starting exactly at EndTime is free.
func (a *Appointment) Blocks(start time.Time) bool {
	return !start.Before(a.StartTime) && start.Before(a.EndTime)
}
