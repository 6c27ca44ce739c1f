package service

import (
	"context"
	"fmt"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/repository"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/schedule"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/config"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/events"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
)

type SchedulingService interface {
	ResolveSlots(ctx context.Context, dateStr string) ([]domain.Slot, error)
	ClaimSlot(ctx context.Context, start, end time.Time, booker domain.Booker) (*domain.Appointment, error)
	CancelAppointment(ctx context.Context, id string, booker domain.Booker) error
	ListClientAppointments(ctx context.Context, clientID string, limit, offset int) ([]domain.Appointment, error)

	// Admin surface
	AgendaData(ctx context.Context, from, to time.Time) ([]domain.AvailabilityRule, []domain.Appointment, error)
	ListRules(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error)
	AddRule(ctx context.Context, rule domain.NewRule) (*domain.AvailabilityRule, error)
	DeleteRule(ctx context.Context, id string) error
	SetRuleVisibility(ctx context.Context, id string, visible bool) error
}

type schedulingService struct {
	rules        repository.AvailabilityRepository
	appointments repository.AppointmentRepository
	eventBus     events.Publisher
	loc          *time.Location
	duration     time.Duration
	now          func() time.Time
}

func NewSchedulingService(
	rules repository.AvailabilityRepository,
	appointments repository.AppointmentRepository,
	eventBus events.Publisher,
	cfg *config.Config,
) (SchedulingService, error) {
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid booking timezone %q: %w", cfg.Booking.Timezone, err)
	}
	return &schedulingService{
		rules:        rules,
		appointments: appointments,
		eventBus:     eventBus,
		loc:          loc,
		duration:     time.Duration(cfg.Booking.SessionDurationMinutes) * time.Minute,
		now:          time.Now,
	}, nil
}

// ResolveSlots computes the bookable slots for a client-local calendar date.
// Store failures propagate; an empty day and a failed lookup are different
// answers.
func (s *schedulingService) ResolveSlots(ctx context.Context, dateStr string) ([]domain.Slot, error) {
	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	weekday := int(date.Weekday(s.loc))

	rules, err := s.rules.ListByDay(ctx, weekday, true)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	if len(rules) == 0 {
		// No rules for this weekday: done, don't query appointments.
		return []domain.Slot{}, nil
	}

	dayStart, dayEnd := date.Bounds(s.loc)
	appointments, err := s.appointments.ListForDay(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	var candidates []domain.Slot
	for _, rule := range rules {
		slots, err := schedule.ExpandRule(rule, date, s.loc, s.duration)
		if err != nil {
			return nil, fmt.Errorf("expand rule %s: %w", rule.ID, err)
		}
		candidates = append(candidates, slots...)
	}

	candidates = schedule.FilterBooked(candidates, appointments)
	candidates = schedule.FilterPast(candidates, s.now())
	schedule.SortSlots(candidates)

	if candidates == nil {
		candidates = []domain.Slot{}
	}
	return candidates, nil
}

// ClaimSlot creates the pending appointment. The lookup before the insert is
// a courtesy check; the storage-level unique index is what actually prevents
// two claims on the same start time.
func (s *schedulingService) ClaimSlot(ctx context.Context, start, end time.Time, booker domain.Booker) (*domain.Appointment, error) {
	if !booker.IsValid() {
		return nil, domain.ErrUnauthorized
	}

	existing, err := s.appointments.FindActiveByStart(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrSlotTaken
	}

	appointment, err := s.appointments.Insert(ctx, start, end, booker, 0)
	if err != nil {
		return nil, err
	}

	event := events.AppointmentClaimedEvent{
		AppointmentID: appointment.ID,
		ClientID:      appointment.ClientID,
		GuestEmail:    appointment.GuestEmail,
		StartTime:     appointment.StartTime,
		EndTime:       appointment.EndTime,
		ClaimedAt:     appointment.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentClaimed, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish claim event", "error", err, "appointment_id", appointment.ID)
	}

	return appointment, nil
}

func (s *schedulingService) CancelAppointment(ctx context.Context, id string, booker domain.Booker) error {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get appointment: %w", err)
	}
	if appointment == nil {
		return domain.ErrNotFound
	}

	if !s.ownedBy(appointment, booker) {
		return domain.ErrUnauthorized
	}
	if appointment.IsTerminal() {
		return domain.ErrNotCancellable
	}

	ok, err := s.appointments.Cancel(ctx, id)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if !ok {
		// Lost a race with a confirmation or another cancel.
		return domain.ErrNotCancellable
	}

	event := events.AppointmentCanceledEvent{
		AppointmentID: id,
		Reason:        "user_requested",
		CanceledAt:    s.now(),
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCanceled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish cancel event", "error", err, "appointment_id", id)
	}
	return nil
}

func (s *schedulingService) ownedBy(a *domain.Appointment, booker domain.Booker) bool {
	if id, ok := booker.ClientID(); ok {
		return a.ClientID != nil && *a.ClientID == id
	}
	if email, ok := booker.GuestEmail(); ok {
		return a.ClientID == nil && a.GuestEmail == email
	}
	return false
}

func (s *schedulingService) ListClientAppointments(ctx context.Context, clientID string, limit, offset int) ([]domain.Appointment, error) {
	return s.appointments.ListByClient(ctx, clientID, limit, offset)
}

func (s *schedulingService) AgendaData(ctx context.Context, from, to time.Time) ([]domain.AvailabilityRule, []domain.Appointment, error) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list rules: %w", err)
	}
	appointments, err := s.appointments.ListInRange(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("list appointments: %w", err)
	}
	return rules, appointments, nil
}

func (s *schedulingService) ListRules(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
	return s.rules.ListByDay(ctx, dayOfWeek, activeOnly)
}

func (s *schedulingService) AddRule(ctx context.Context, rule domain.NewRule) (*domain.AvailabilityRule, error) {
	if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
		return nil, fmt.Errorf("day_of_week must be 0-6, got %d", rule.DayOfWeek)
	}
	if _, err := schedule.ParseTimeOfDay(rule.StartTime); err != nil {
		return nil, err
	}
	if _, err := schedule.ParseTimeOfDay(rule.EndTime); err != nil {
		return nil, err
	}
	return s.rules.Insert(ctx, rule)
}

func (s *schedulingService) DeleteRule(ctx context.Context, id string) error {
	ok, err := s.rules.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *schedulingService) SetRuleVisibility(ctx context.Context, id string, visible bool) error {
	ok, err := s.rules.SetVisibility(ctx, id, visible)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
