package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/service"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/events"
)

var spTime = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}()

func newSchedulingService(t *testing.T, rules *mockAvailabilityRepo, appointments *mockAppointmentRepo, bus *mockPublisher) service.SchedulingService {
	t.Helper()
	svc, err := service.NewSchedulingService(rules, appointments, bus, testConfig())
	if err != nil {
		t.Fatalf("NewSchedulingService: %v", err)
	}
	return svc
}

func mondayRule(start, end string) domain.AvailabilityRule {
	return domain.AvailabilityRule{
		ID:        "rule-1",
		DayOfWeek: 1,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
		IsVisible: true,
	}
}

func TestResolveSlots_FiltersBooked(t *testing.T) {
	// 2030-09-02 is a Monday, far enough out that no slot is in the past.
	at := func(h, m int) time.Time {
		return time.Date(2030, 9, 2, h, m, 0, 0, spTime)
	}

	rules := &mockAvailabilityRepo{
		listByDayFunc: func(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
			if dayOfWeek != 1 {
				t.Errorf("queried day %d, want 1 (Monday)", dayOfWeek)
			}
			if !activeOnly {
				t.Error("expected active-only rule lookup")
			}
			return []domain.AvailabilityRule{mondayRule("14:00:00", "18:00:00")}, nil
		},
	}
	appointments := &mockAppointmentRepo{
		listForDayFunc: func(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{
				{ID: "a1", StartTime: at(15, 40), EndTime: at(16, 30), Status: domain.AppointmentPending},
			}, nil
		},
	}

	svc := newSchedulingService(t, rules, appointments, &mockPublisher{})

	slots, err := svc.ResolveSlots(context.Background(), "2030-09-02")
	if err != nil {
		t.Fatalf("ResolveSlots: %v", err)
	}

	wantStarts := []string{"14:00", "14:50", "16:30"}
	if len(slots) != len(wantStarts) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(wantStarts), slots)
	}
	for i, s := range slots {
		if got := s.Start.In(spTime).Format("15:04"); got != wantStarts[i] {
			t.Errorf("slot %d starts %s, want %s", i, got, wantStarts[i])
		}
	}
}

func TestResolveSlots_NoRulesSkipsAppointmentLookup(t *testing.T) {
	rules := &mockAvailabilityRepo{
		listByDayFunc: func(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
			return nil, nil
		},
	}
	appointments := &mockAppointmentRepo{
		listForDayFunc: func(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
			t.Error("appointments queried for a day with no rules")
			return nil, nil
		},
	}

	svc := newSchedulingService(t, rules, appointments, &mockPublisher{})

	slots, err := svc.ResolveSlots(context.Background(), "2030-09-02")
	if err != nil {
		t.Fatalf("ResolveSlots: %v", err)
	}
	if slots == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0", len(slots))
	}
}

func TestResolveSlots_PastDayYieldsNothing(t *testing.T) {
	rules := &mockAvailabilityRepo{
		listByDayFunc: func(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
			return []domain.AvailabilityRule{mondayRule("14:00:00", "18:00:00")}, nil
		},
	}

	svc := newSchedulingService(t, rules, &mockAppointmentRepo{}, &mockPublisher{})

	// 2020-09-07 was a Monday with matching rules, but every slot is behind us.
	slots, err := svc.ResolveSlots(context.Background(), "2020-09-07")
	if err != nil {
		t.Fatalf("ResolveSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots for a past day, want 0", len(slots))
	}
}

func TestResolveSlots_MalformedDate(t *testing.T) {
	svc := newSchedulingService(t, &mockAvailabilityRepo{}, &mockAppointmentRepo{}, &mockPublisher{})

	for _, in := range []string{"", "02/09/2030", "2030-13-01", "not-a-date"} {
		if _, err := svc.ResolveSlots(context.Background(), in); err == nil {
			t.Errorf("ResolveSlots(%q): expected error", in)
		}
	}
}

func TestResolveSlots_StoreErrorPropagates(t *testing.T) {
	rules := &mockAvailabilityRepo{
		listByDayFunc: func(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
			return nil, domain.StoreError(fmt.Errorf("connection refused"))
		},
	}

	svc := newSchedulingService(t, rules, &mockAppointmentRepo{}, &mockPublisher{})

	_, err := svc.ResolveSlots(context.Background(), "2030-09-02")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestClaimSlot_Success(t *testing.T) {
	start := time.Date(2030, 9, 2, 14, 0, 0, 0, spTime)
	end := start.Add(50 * time.Minute)
	clientID := "client-1"

	var inserted bool
	appointments := &mockAppointmentRepo{
		insertFunc: func(ctx context.Context, s, e time.Time, booker domain.Booker, price float64) (*domain.Appointment, error) {
			inserted = true
			if price != 0 {
				t.Errorf("claim inserted price %v, want 0 (priced at checkout)", price)
			}
			return &domain.Appointment{
				ID: "appt-1", StartTime: s, EndTime: e,
				Status: domain.AppointmentPending, ClientID: &clientID,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	bus := &mockPublisher{}

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, appointments, bus)

	appt, err := svc.ClaimSlot(context.Background(), start, end, domain.ClientBooker(clientID))
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if !inserted {
		t.Fatal("appointment was not inserted")
	}
	if appt.Status != domain.AppointmentPending {
		t.Errorf("status = %s, want pending", appt.Status)
	}
	if len(bus.published) != 1 || bus.published[0].subject != events.AppointmentClaimed {
		t.Fatalf("published = %+v, want one %s event", bus.published, events.AppointmentClaimed)
	}
}

func TestClaimSlot_Taken(t *testing.T) {
	start := time.Date(2030, 9, 2, 14, 0, 0, 0, spTime)

	appointments := &mockAppointmentRepo{
		findActiveByStartFunc: func(ctx context.Context, startTime time.Time) (*domain.Appointment, error) {
			return &domain.Appointment{ID: "existing", StartTime: startTime}, nil
		},
		insertFunc: func(ctx context.Context, s, e time.Time, booker domain.Booker, price float64) (*domain.Appointment, error) {
			t.Error("insert attempted for an already-taken slot")
			return nil, nil
		},
	}
	bus := &mockPublisher{}

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, appointments, bus)

	_, err := svc.ClaimSlot(context.Background(), start, start.Add(50*time.Minute), domain.GuestBooker("guest@example.com"))
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Errorf("published %d events for a failed claim, want 0", len(bus.published))
	}
}

func TestClaimSlot_UniqueIndexConflict(t *testing.T) {
	// The pre-check missed a concurrent claim; the insert itself reports the
	// conflict via the storage unique index.
	start := time.Date(2030, 9, 2, 14, 0, 0, 0, spTime)

	appointments := &mockAppointmentRepo{
		insertFunc: func(ctx context.Context, s, e time.Time, booker domain.Booker, price float64) (*domain.Appointment, error) {
			return nil, domain.ErrSlotTaken
		},
	}

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, appointments, &mockPublisher{})

	_, err := svc.ClaimSlot(context.Background(), start, start.Add(50*time.Minute), domain.ClientBooker("client-1"))
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestClaimSlot_NoIdentity(t *testing.T) {
	start := time.Date(2030, 9, 2, 14, 0, 0, 0, spTime)

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, &mockAppointmentRepo{}, &mockPublisher{})

	_, err := svc.ClaimSlot(context.Background(), start, start.Add(50*time.Minute), domain.Booker{})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCancelAppointment_Ownership(t *testing.T) {
	owner := "client-1"
	stored := &domain.Appointment{
		ID:       "appt-1",
		ClientID: &owner,
		Status:   domain.AppointmentPending,
	}

	appointments := &mockAppointmentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*domain.Appointment, error) {
			return stored, nil
		},
		cancelFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	bus := &mockPublisher{}

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, appointments, bus)

	if err := svc.CancelAppointment(context.Background(), "appt-1", domain.ClientBooker("someone-else")); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("foreign cancel: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.CancelAppointment(context.Background(), "appt-1", domain.GuestBooker("guest@example.com")); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("guest cancel of client booking: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.CancelAppointment(context.Background(), "appt-1", domain.ClientBooker(owner)); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if len(bus.published) != 1 || bus.published[0].subject != events.AppointmentCanceled {
		t.Fatalf("published = %+v, want one %s event", bus.published, events.AppointmentCanceled)
	}
}

func TestCancelAppointment_ConfirmedIsTerminal(t *testing.T) {
	// Pending is the only cancellable state. A confirmed (paid) appointment
	// must survive its owner's cancel attempt untouched.
	owner := "client-1"
	cancelled := false
	appointments := &mockAppointmentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*domain.Appointment, error) {
			return &domain.Appointment{
				ID:       id,
				ClientID: &owner,
				Status:   domain.AppointmentConfirmed,
			}, nil
		},
		cancelFunc: func(ctx context.Context, id string) (bool, error) {
			cancelled = true
			return true, nil
		},
	}
	bus := &mockPublisher{}

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, appointments, bus)

	err := svc.CancelAppointment(context.Background(), "appt-1", domain.ClientBooker(owner))
	if !errors.Is(err, domain.ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
	if cancelled {
		t.Fatal("confirmed appointment reached the cancel update")
	}
	if len(bus.published) != 0 {
		t.Errorf("published %d events for a rejected cancel, want 0", len(bus.published))
	}
}

func TestCancelAppointment_LostRaceWithConfirmation(t *testing.T) {
	// The row was pending at read time but confirmed before the update ran;
	// the status-guarded UPDATE touches nothing and the cancel is rejected.
	owner := "client-1"
	appointments := &mockAppointmentRepo{
		getByIDFunc: func(ctx context.Context, id string) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, ClientID: &owner, Status: domain.AppointmentPending}, nil
		},
		cancelFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	bus := &mockPublisher{}

	svc := newSchedulingService(t, &mockAvailabilityRepo{}, appointments, bus)

	err := svc.CancelAppointment(context.Background(), "appt-1", domain.ClientBooker(owner))
	if !errors.Is(err, domain.ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Errorf("published %d events for a lost cancel race, want 0", len(bus.published))
	}
}

func TestCancelAppointment_NotFound(t *testing.T) {
	svc := newSchedulingService(t, &mockAvailabilityRepo{}, &mockAppointmentRepo{}, &mockPublisher{})

	err := svc.CancelAppointment(context.Background(), "missing", domain.ClientBooker("client-1"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddRule_Validation(t *testing.T) {
	inserted := false
	rules := &mockAvailabilityRepo{
		insertFunc: func(ctx context.Context, rule domain.NewRule) (*domain.AvailabilityRule, error) {
			inserted = true
			return &domain.AvailabilityRule{ID: "rule-1"}, nil
		},
	}

	svc := newSchedulingService(t, rules, &mockAppointmentRepo{}, &mockPublisher{})

	bad := []domain.NewRule{
		{DayOfWeek: 7, StartTime: "09:00:00", EndTime: "12:00:00"},
		{DayOfWeek: -1, StartTime: "09:00:00", EndTime: "12:00:00"},
		{DayOfWeek: 1, StartTime: "9am", EndTime: "12:00:00"},
		{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "25:00:00"},
	}
	for _, rule := range bad {
		if _, err := svc.AddRule(context.Background(), rule); err == nil {
			t.Errorf("AddRule(%+v): expected error", rule)
		}
	}
	if inserted {
		t.Fatal("invalid rule reached the repository")
	}

	if _, err := svc.AddRule(context.Background(), domain.NewRule{DayOfWeek: 1, StartTime: "09:00:00", EndTime: "00:00:00"}); err != nil {
		t.Fatalf("midnight-sentinel rule rejected: %v", err)
	}
	if !inserted {
		t.Fatal("valid rule never inserted")
	}
}
