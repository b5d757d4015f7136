package pg

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"queuepulse.board/internal/core/circuitbreaker"
	"queuepulse.board/internal/core/domain"
)

// Repository reads execution history and schedules from Postgres. Queries go
// through a circuit breaker so a flapping database fails renders fast instead
// of stacking up slow queries behind every dashboard request.
type Repository struct {
	db      *gorm.DB
	breaker *circuitbreaker.CircuitBreaker
}

func NewRepository(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(&domain.Execution{}, &domain.Schedule{}); err != nil {
		return nil, err
	}

	return &Repository{
		db:      db,
		breaker: circuitbreaker.New("postgres"),
	}, nil
}

// ListInProgress returns only executions currently being worked on. This is
// the bounded query used for backlogged queues.
func (r *Repository) ListInProgress(ctx context.Context, queueID, taskType string) ([]domain.Execution, error) {
	var executions []domain.Execution
	err := r.breaker.Execute(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("queue_id = ? AND task_type = ? AND state = ?", queueID, taskType, domain.ExecutionInProgress).
			Order("enqueued_at desc").
			Find(&executions).Error
	})
	if err != nil {
		return nil, err
	}
	return executions, nil
}

// ListAll returns the full execution history for a pair, newest first. The
// result is unbounded; callers gate it behind the backlog threshold.
func (r *Repository) ListAll(ctx context.Context, queueID, taskType string) ([]domain.Execution, error) {
	var executions []domain.Execution
	err := r.breaker.Execute(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("queue_id = ? AND task_type = ?", queueID, taskType).
			Order("enqueued_at desc").
			Find(&executions).Error
	})
	if err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *Repository) Create(ctx context.Context, execution *domain.Execution) error {
	return r.breaker.Execute(ctx, func() error {
		return r.db.WithContext(ctx).Create(execution).Error
	})
}

// Lookup returns the schedule for a pair, or (nil, nil) when none is
// configured.
func (r *Repository) Lookup(ctx context.Context, queueID, taskType string) (*domain.Schedule, error) {
	var schedule domain.Schedule
	found := true
	err := r.breaker.Execute(ctx, func() error {
		err := r.db.WithContext(ctx).
			First(&schedule, "queue_id = ? AND task_type = ?", queueID, taskType).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absence is an answer, not a backend failure; it must not
			// count against the breaker.
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &schedule, nil
}

// UpsertSchedule writes a schedule row, replacing any existing one for the
// pair. Used by the seed tool.
func (r *Repository) UpsertSchedule(ctx context.Context, schedule *domain.Schedule) error {
	return r.breaker.Execute(ctx, func() error {
		return r.db.WithContext(ctx).Save(schedule).Error
	})
}

// DB returns the underlying gorm DB instance
func (r *Repository) DB() *gorm.DB {
	return r.db
}
