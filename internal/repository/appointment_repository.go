package repository

import (
	"context"
	"errors"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository interface {
	ListForDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Appointment, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	FindActiveByStart(ctx context.Context, startTime time.Time) (*domain.Appointment, error)
	CountConfirmedByClient(ctx context.Context, clientID string) (int, error)
	Insert(ctx context.Context, start, end time.Time, booker domain.Booker, price float64) (*domain.Appointment, error)
	SetPrice(ctx context.Context, id string, price float64) error
	Confirm(ctx context.Context, id, paymentID string) (*domain.Appointment, error)
	Cancel(ctx context.Context, id string) (bool, error)
	DeleteExpiredPending(ctx context.Context, olderThan time.Time) (int64, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const apptCols = `id, start_time, end_time, status, client_id, guest_email, price, payment_id, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID, &a.StartTime, &a.EndTime, &a.Status,
		&a.ClientID, &a.GuestEmail, &a.Price, &a.PaymentID,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) ListForDay(ctx context.Context, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments
		WHERE status <> 'cancelled' AND start_time >= $1 AND start_time <= $2
		ORDER BY start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, dayStart, dayEnd)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *appointmentRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]domain.Appointment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + apptCols + ` FROM appointments
		WHERE client_id=$1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, clientID, limit, offset)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *appointmentRepository) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments
		WHERE status <> 'cancelled' AND start_time >= $1 AND start_time <= $2
		ORDER BY start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return a, nil
}

func (r *appointmentRepository) FindActiveByStart(ctx context.Context, startTime time.Time) (*domain.Appointment, error) {
	const q = `SELECT ` + apptCols + ` FROM appointments
		WHERE start_time=$1 AND status <> 'cancelled' LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, startTime))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return a, nil
}

func (r *appointmentRepository) CountConfirmedByClient(ctx context.Context, clientID string) (int, error) {
	const q = `SELECT count(*) FROM appointments WHERE client_id=$1 AND status='confirmed'`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int
	if err := r.pool.QueryRow(ctx, q, clientID).Scan(&count); err != nil {
		return 0, domain.StoreError(err)
	}
	return count, nil
}

// Insert creates the pending row. The partial unique index on start_time for
// non-cancelled rows is the real uniqueness guarantee; the service's
// pre-check is only a fast path. A 23505 from that index means the slot was
// claimed concurrently.
func (r *appointmentRepository) Insert(ctx context.Context, start, end time.Time, booker domain.Booker, price float64) (*domain.Appointment, error) {
	const q = `INSERT INTO appointments (id, start_time, end_time, status, client_id, guest_email, price)
		VALUES ($1,$2,$3,'pending',$4,$5,$6)
		RETURNING ` + apptCols

	var clientID *string
	guestEmail := ""
	if id, ok := booker.ClientID(); ok {
		clientID = &id
	}
	if email, ok := booker.GuestEmail(); ok {
		guestEmail = email
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, uuid.NewString(), start, end, clientID, guestEmail, price))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrSlotTaken
		}
		return nil, domain.StoreError(err)
	}
	return a, nil
}

// SetPrice records the ladder price quoted when checkout opens.
func (r *appointmentRepository) SetPrice(ctx context.Context, id string, price float64) error {
	const q = `UPDATE appointments SET price=$2, updated_at=now() WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.pool.Exec(ctx, q, id, price); err != nil {
		return domain.StoreError(err)
	}
	return nil
}

// Confirm applies pending->confirmed and records the payment reference.
// The status guard in the WHERE clause makes repeated confirmations no-ops.
func (r *appointmentRepository) Confirm(ctx context.Context, id, paymentID string) (*domain.Appointment, error) {
	const q = `UPDATE appointments
		SET status='confirmed', payment_id=$2, updated_at=now()
		WHERE id=$1 AND status='pending'
		RETURNING ` + apptCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAppointment(r.pool.QueryRow(ctx, q, id, paymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return a, nil
}

// Cancel applies pending->cancelled. Confirmed rows never cancel; the
// status guard makes a cancel racing a confirmation lose cleanly.
func (r *appointmentRepository) Cancel(ctx context.Context, id string) (bool, error) {
	const q = `UPDATE appointments SET status='cancelled', updated_at=now()
		WHERE id=$1 AND status='pending'`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, domain.StoreError(err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteExpiredPending removes only pending rows older than the cutoff.
// Confirmed and cancelled rows are never touched, so the sweep is safe to
// run concurrently with claims and confirmations.
func (r *appointmentRepository) DeleteExpiredPending(ctx context.Context, olderThan time.Time) (int64, error) {
	const q = `DELETE FROM appointments WHERE status='pending' AND created_at < $1`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, olderThan)
	if err != nil {
		return 0, domain.StoreError(err)
	}
	return result.RowsAffected(), nil
}

func collectAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(
			&a.ID, &a.StartTime, &a.EndTime, &a.Status,
			&a.ClientID, &a.GuestEmail, &a.Price, &a.PaymentID,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, domain.StoreError(err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError(err)
	}
	return appointments, nil
}
