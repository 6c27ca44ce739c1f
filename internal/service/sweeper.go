package service

import (
	"context"
	"fmt"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/repository"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/events"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Sweeper expires stale pending appointments so their slots free up again.
// Each run is idempotent: it deletes only pending rows past the TTL, so
// running concurrently with claims, confirmations or another sweep is safe.
type Sweeper struct {
	appointments repository.AppointmentRepository
	eventBus     events.Publisher
	pendingTTL   time.Duration
	cron         *cron.Cron
}

func NewSweeper(appointments repository.AppointmentRepository, eventBus events.Publisher, pendingTTL time.Duration) *Sweeper {
	return &Sweeper{
		appointments: appointments,
		eventBus:     eventBus,
		pendingTTL:   pendingTTL,
		cron:         cron.New(),
	}
}

// Start schedules the sweep at the given interval and runs until Stop.
func (s *Sweeper) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			logger.Error("Pending-appointment sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.cron.Start()
	logger.Info("Pending-appointment sweeper started", "interval", interval.String(), "ttl", s.pendingTTL.String())
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// RunOnce deletes pending appointments created before now-TTL and reports
// how many were removed.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.pendingTTL)

	removed, err := s.appointments.DeleteExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired pending: %w", err)
	}
	if removed == 0 {
		return 0, nil
	}

	logger.InfoContext(ctx, "Expired pending appointments removed", "count", removed)

	event := events.AppointmentExpiredEvent{
		Removed:   removed,
		OlderThan: cutoff,
		SweptAt:   time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentExpired, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish expiry event", "error", err)
	}
	return removed, nil
}
