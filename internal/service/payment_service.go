package service

import (
	"context"
	"fmt"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/payments"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/repository"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/schedule"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/config"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/events"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

type Checkout struct {
	PreferenceID string  `json:"preference_id"`
	CheckoutURL  string  `json:"checkout_url"`
	Price        float64 `json:"price"`
}

type PaymentService interface {
	CreateCheckout(ctx context.Context, appointmentID string, booker domain.Booker) (*Checkout, error)
	ConfirmPayment(ctx context.Context, paymentID string) error
}

type paymentService struct {
	appointments repository.AppointmentRepository
	gateway      payments.Gateway
	eventBus     events.Publisher
	cfg          *config.Config
}

func NewPaymentService(
	appointments repository.AppointmentRepository,
	gateway payments.Gateway,
	eventBus events.Publisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		appointments: appointments,
		gateway:      gateway,
		eventBus:     eventBus,
		cfg:          cfg,
	}
}

// CreateCheckout prices the appointment on the loyalty ladder and opens a
// hosted checkout preference for it. Guests always pay the base price; a
// client's price drops with each prior confirmed session.
func (s *paymentService) CreateCheckout(ctx context.Context, appointmentID string, booker domain.Booker) (*Checkout, error) {
	if !booker.IsValid() {
		return nil, domain.ErrUnauthorized
	}

	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appointment == nil {
		return nil, domain.ErrNotFound
	}

	price := s.cfg.Booking.PriceLadder[0]
	payerEmail := appointment.GuestEmail
	if clientID, ok := booker.ClientID(); ok {
		confirmed, err := s.appointments.CountConfirmedByClient(ctx, clientID)
		if err != nil {
			// Counting failed: charge base price rather than block checkout.
			logger.WarnContext(ctx, "Confirmed-session count unavailable, using base price", "error", err, "client_id", clientID)
			confirmed = 0
		}
		price = schedule.PriceFor(s.cfg.Booking.PriceLadder, confirmed)
	}
	if email, ok := booker.GuestEmail(); ok {
		payerEmail = email
	}

	baseURL := s.cfg.Server.BaseURL
	pref, err := s.gateway.CreatePreference(ctx, payments.PreferenceRequest{
		AppointmentID: appointment.ID,
		Title:         "Consultoria Premium - Sessão",
		Price:         price,
		Currency:      s.cfg.MercadoPago.Currency,
		PayerEmail:    payerEmail,
		SuccessURL:    baseURL + "/capsula/feedback?status=success",
		FailureURL:    baseURL + "/capsula/feedback?status=failure",
		PendingURL:    baseURL + "/capsula/feedback?status=pending",
		NotifyURL:     baseURL + "/v1/webhooks/mercadopago",
	})
	if err != nil {
		return nil, err
	}

	if err := s.appointments.SetPrice(ctx, appointment.ID, price); err != nil {
		logger.ErrorContext(ctx, "Failed to record quoted price", "error", err, "appointment_id", appointment.ID)
	}

	event := events.CheckoutCreatedEvent{
		AppointmentID: appointment.ID,
		PreferenceID:  pref.ID,
		CheckoutURL:   pref.CheckoutURL,
		GuestEmail:    appointment.GuestEmail,
		StartTime:     appointment.StartTime,
		Price:         price,
		Currency:      s.cfg.MercadoPago.Currency,
	}
	if err := s.eventBus.Publish(ctx, events.CheckoutCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish checkout event", "error", err, "appointment_id", appointment.ID)
	}

	return &Checkout{
		PreferenceID: pref.ID,
		CheckoutURL:  pref.CheckoutURL,
		Price:        price,
	}, nil
}

// ConfirmPayment resolves a gateway notification. It is idempotent: a
// repeated notification for an already-confirmed appointment is a no-op.
// Only "approved" payments confirm anything.
func (s *paymentService) ConfirmPayment(ctx context.Context, paymentID string) error {
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	if payment.Status != payments.StatusApproved {
		logger.InfoContext(ctx, "Payment not approved, ignoring", "payment_id", paymentID, "status", payment.Status)
		event := events.PaymentDeclinedEvent{
			AppointmentID: payment.ExternalReference,
			PaymentID:     paymentID,
			Status:        payment.Status,
			DeclinedAt:    time.Now(),
		}
		if err := s.eventBus.Publish(ctx, events.PaymentDeclined, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish decline event", "error", err, "payment_id", paymentID)
		}
		return nil
	}

	appointmentID := payment.ExternalReference
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}
	if appointment == nil {
		return fmt.Errorf("appointment %s for payment %s: %w", appointmentID, paymentID, domain.ErrNotFound)
	}
	if !appointment.CanConfirm() {
		logger.InfoContext(ctx, "Appointment not pending, skipping confirmation",
			"appointment_id", appointmentID, "status", appointment.Status)
		return nil
	}

	confirmed, err := s.appointments.Confirm(ctx, appointmentID, paymentID)
	if err != nil {
		return fmt.Errorf("confirm appointment: %w", err)
	}
	if confirmed == nil {
		// Lost the race with another notification delivery; already handled.
		return nil
	}

	event := events.AppointmentConfirmedEvent{
		AppointmentID: confirmed.ID,
		ClientID:      confirmed.ClientID,
		GuestEmail:    confirmed.GuestEmail,
		StartTime:     confirmed.StartTime,
		EndTime:       confirmed.EndTime,
		PaymentID:     paymentID,
		Price:         confirmed.Price,
		ConfirmedAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentConfirmed, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish confirmation event", "error", err, "appointment_id", confirmed.ID)
	}

	logger.InfoContext(ctx, "Appointment confirmed", "appointment_id", confirmed.ID, "payment_id", paymentID)
	return nil
}
