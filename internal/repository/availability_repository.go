package repository

import (
	"context"
	"time"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepository interface {
	ListByDay(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error)
	ListActive(ctx context.Context) ([]domain.AvailabilityRule, error)
	Insert(ctx context.Context, rule domain.NewRule) (*domain.AvailabilityRule, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetVisibility(ctx context.Context, id string, visible bool) (bool, error)
}

type availabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) AvailabilityRepository {
	return &availabilityRepository{pool: pool}
}

const ruleCols = `id, day_of_week, start_time, end_time, is_active, is_visible, created_at`

func (r *availabilityRepository) ListByDay(ctx context.Context, dayOfWeek int, activeOnly bool) ([]domain.AvailabilityRule, error) {
	q := `SELECT ` + ruleCols + ` FROM availability_rules WHERE day_of_week=$1`
	if activeOnly {
		q += ` AND is_active`
	}
	q += ` ORDER BY start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, dayOfWeek)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	defer rows.Close()

	var rules []domain.AvailabilityRule
	for rows.Next() {
		var rule domain.AvailabilityRule
		if err := rows.Scan(
			&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime,
			&rule.IsActive, &rule.IsVisible, &rule.CreatedAt,
		); err != nil {
			return nil, domain.StoreError(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError(err)
	}
	return rules, nil
}

func (r *availabilityRepository) ListActive(ctx context.Context) ([]domain.AvailabilityRule, error) {
	const q = `SELECT ` + ruleCols + ` FROM availability_rules WHERE is_active ORDER BY day_of_week, start_time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	defer rows.Close()

	var rules []domain.AvailabilityRule
	for rows.Next() {
		var rule domain.AvailabilityRule
		if err := rows.Scan(
			&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime,
			&rule.IsActive, &rule.IsVisible, &rule.CreatedAt,
		); err != nil {
			return nil, domain.StoreError(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError(err)
	}
	return rules, nil
}

func (r *availabilityRepository) Insert(ctx context.Context, req domain.NewRule) (*domain.AvailabilityRule, error) {
	const q = `INSERT INTO availability_rules (id, day_of_week, start_time, end_time, is_active, is_visible)
		VALUES ($1,$2,$3,$4,true,true)
		RETURNING ` + ruleCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rule domain.AvailabilityRule
	err := r.pool.QueryRow(ctx, q, uuid.NewString(), req.DayOfWeek, req.StartTime, req.EndTime).Scan(
		&rule.ID, &rule.DayOfWeek, &rule.StartTime, &rule.EndTime,
		&rule.IsActive, &rule.IsVisible, &rule.CreatedAt,
	)
	if err != nil {
		return nil, domain.StoreError(err)
	}
	return &rule, nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM availability_rules WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, domain.StoreError(err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *availabilityRepository) SetVisibility(ctx context.Context, id string, visible bool) (bool, error) {
	const q = `UPDATE availability_rules SET is_visible=$2 WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, visible)
	if err != nil {
		return false, domain.StoreError(err)
	}
	return result.RowsAffected() > 0, nil
}
