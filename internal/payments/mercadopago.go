package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

type MercadoPago struct {
	preferences preference.Client
	payments    payment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercado pago config: %w", err)
	}
	return &MercadoPago{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
	}, nil
}

func (m *MercadoPago) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	request := preference.Request{
		Items: []preference.ItemRequest{
			{
				ID:         req.AppointmentID,
				Title:      req.Title,
				Quantity:   1,
				UnitPrice:  req.Price,
				CurrencyID: req.Currency,
			},
		},
		Payer: &preference.PayerRequest{
			Email: req.PayerEmail,
		},
		ExternalReference: req.AppointmentID,
		NotificationURL:   req.NotifyURL,
		BackURLs: &preference.BackURLsRequest{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn: "approved",
	}

	resource, err := m.preferences.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: create preference: %v", domain.ErrPaymentGateway, err)
	}

	return &Preference{
		ID:          resource.ID,
		CheckoutURL: resource.InitPoint,
	}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad payment id %q", domain.ErrPaymentGateway, paymentID)
	}

	resource, err := m.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get payment %s: %v", domain.ErrPaymentGateway, paymentID, err)
	}

	return &Payment{
		ID:                paymentID,
		Status:            resource.Status,
		ExternalReference: resource.ExternalReference,
	}, nil
}
