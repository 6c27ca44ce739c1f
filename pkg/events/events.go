package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	AppointmentClaimed   = "appointment.claimed"
	AppointmentConfirmed = "appointment.confirmed"
	AppointmentCanceled  = "appointment.canceled"
	AppointmentExpired   = "appointment.expired"

	CheckoutCreated = "checkout.created"
	PaymentDeclined = "payment.declined"
)

// Event payloads
type AppointmentClaimedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	ClientID      *string   `json:"client_id,omitempty"`
	GuestEmail    string    `json:"guest_email,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

type AppointmentConfirmedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	ClientID      *string   `json:"client_id,omitempty"`
	GuestEmail    string    `json:"guest_email,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	PaymentID     string    `json:"payment_id"`
	Price         float64   `json:"price"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

type AppointmentCanceledEvent struct {
	AppointmentID string    `json:"appointment_id"`
	Reason        string    `json:"reason"`
	CanceledAt    time.Time `json:"canceled_at"`
}

type AppointmentExpiredEvent struct {
	Removed   int64     `json:"removed"`
	OlderThan time.Time `json:"older_than"`
	SweptAt   time.Time `json:"swept_at"`
}

type PaymentDeclinedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	PaymentID     string    `json:"payment_id"`
	Status        string    `json:"status"`
	DeclinedAt    time.Time `json:"declined_at"`
}

type CheckoutCreatedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	PreferenceID  string    `json:"preference_id"`
	CheckoutURL   string    `json:"checkout_url"`
	GuestEmail    string    `json:"guest_email,omitempty"`
	StartTime     time.Time `json:"start_time"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
}
