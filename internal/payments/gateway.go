package payments

import "context"

// PreferenceRequest describes the hosted-checkout preference for one
// appointment. ExternalReference carries the appointment ID so the webhook
// can find its way back.
type PreferenceRequest struct {
	AppointmentID string
	Title         string
	Price         float64
	Currency      string
	PayerEmail    string
	SuccessURL    string
	FailureURL    string
	PendingURL    string
	NotifyURL     string
}

type Preference struct {
	ID          string
	CheckoutURL string
}

// Payment is the gateway's view of a payment, fetched when a notification
// arrives. Status "approved" is the only one that confirms an appointment.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
}

const StatusApproved = "approved"

type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}
