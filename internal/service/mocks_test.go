package service_test

import (
	"context"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/payments"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/config"
)

type mockAvailabilityRepo struct {
	listByDayFunc     func(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error)
	listActiveFunc    func(ctx context.Context) ([]domain.AvailabilityRule, error)
	insertFunc        func(ctx context.Context, rule domain.NewRule) (*domain.AvailabilityRule, error)
	deleteFunc        func(ctx context.Context, id string) (bool, error)
	setVisibilityFunc func(ctx context.Context, id string, visible bool) (bool, error)
}

func (m *mockAvailabilityRepo) ListByDay(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
	if m.listByDayFunc != nil {
		return m.listByDayFunc(ctx, dayOfWeek, activeOnly)
	}
	return nil, nil
}

func (m *mockAvailabilityRepo) ListActive(ctx context.Context) ([]domain.AvailabilityRule, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockAvailabilityRepo) Insert(ctx context.Context, rule domain.NewRule) (*domain.AvailabilityRule, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, rule)
	}
	return nil, nil
}

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return false, nil
}

func (m *mockAvailabilityRepo) SetVisibility(ctx context.Context, id string, visible bool) (bool, error) {
	if m.setVisibilityFunc != nil {
		return m.setVisibilityFunc(ctx, id, visible)
	}
	return false, nil
}

type mockAppointmentRepo struct {
	listForDayFunc             func(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	listByClientFunc           func(ctx context.Context, clientID string, limit, offset int) ([]domain.Appointment, error)
	listInRangeFunc            func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	getByIDFunc                func(ctx context.Context, id string) (*domain.Appointment, error)
	findActiveByStartFunc      func(ctx context.Context, startTime time.Time) (*domain.Appointment, error)
	countConfirmedByClientFunc func(ctx context.Context, clientID string) (int, error)
	insertFunc                 func(ctx context.Context, start, end time.Time, booker domain.Booker, price float64) (*domain.Appointment, error)
	setPriceFunc               func(ctx context.Context, id string, price float64) error
	confirmFunc                func(ctx context.Context, id, paymentID string) (*domain.Appointment, error)
	cancelFunc                 func(ctx context.Context, id string) (bool, error)
	deleteExpiredPendingFunc   func(ctx context.Context, olderThan time.Time) (int64, error)
}

func (m *mockAppointmentRepo) ListForDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	if m.listForDayFunc != nil {
		return m.listForDayFunc(ctx, dayStart, dayEnd)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Appointment, error) {
	if m.listByClientFunc != nil {
		return m.listByClientFunc(ctx, clientID, limit, offset)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	if m.listInRangeFunc != nil {
		return m.listInRangeFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) FindActiveByStart(ctx context.Context, startTime time.Time) (*domain.Appointment, error) {
	if m.findActiveByStartFunc != nil {
		return m.findActiveByStartFunc(ctx, startTime)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) CountConfirmedByClient(ctx context.Context, clientID string) (int, error) {
	if m.countConfirmedByClientFunc != nil {
		return m.countConfirmedByClientFunc(ctx, clientID)
	}
	return 0, nil
}

func (m *mockAppointmentRepo) Insert(ctx context.Context, start, end time.Time, booker domain.Booker, price float64) (*domain.Appointment, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, start, end, booker, price)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) SetPrice(ctx context.Context, id string, price float64) error {
	if m.setPriceFunc != nil {
		return m.setPriceFunc(ctx, id, price)
	}
	return nil
}

func (m *mockAppointmentRepo) Confirm(ctx context.Context, id, paymentID string) (*domain.Appointment, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id, paymentID)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) Cancel(ctx context.Context, id string) (bool, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return false, nil
}

func (m *mockAppointmentRepo) DeleteExpiredPending(ctx context.Context, olderThan time.Time) (int64, error) {
	if m.deleteExpiredPendingFunc != nil {
		return m.deleteExpiredPendingFunc(ctx, olderThan)
	}
	return 0, nil
}

// mockPublisher records published events for assertions.
type mockPublisher struct {
	published []publishedEvent
	err       error
}

type publishedEvent struct {
	subject string
	data    interface{}
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	m.published = append(m.published, publishedEvent{subject: subject, data: data})
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type mockGateway struct {
	createPreferenceFunc func(ctx context.Context, req payments.PreferenceRequest) (*payments.Preference, error)
	getPaymentFunc       func(ctx context.Context, paymentID string) (*payments.Payment, error)
}

func (m *mockGateway) CreatePreference(ctx context.Context, req payments.PreferenceRequest) (*payments.Preference, error) {
	if m.createPreferenceFunc != nil {
		return m.createPreferenceFunc(ctx, req)
	}
	return &payments.Preference{ID: "pref-1", CheckoutURL: "https://mp.example/checkout/pref-1"}, nil
}

func (m *mockGateway) GetPayment(ctx context.Context, paymentID string) (*payments.Payment, error) {
	if m.getPaymentFunc != nil {
		return m.getPaymentFunc(ctx, paymentID)
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL: "https://agenda.example.com",
		},
		MercadoPago: config.MercadoPagoConfig{
			Currency: "BRL",
		},
		Booking: config.BookingConfig{
			SessionDurationMinutes: 50,
			Timezone:               "America/Sao_Paulo",
			PendingTTL:             15 * time.Minute,
			SweepInterval:          5 * time.Minute,
			PriceLadder:            []float64{200, 150, 120, 100},
		},
	}
}
