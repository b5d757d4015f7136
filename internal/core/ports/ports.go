package ports

import (
	"context"

	"queuepulse.board/internal/core/domain"
)

// QueueRegistry enumerates queues and their processors and resolves per-entry
// display metadata. Enumeration failures are fatal to a render; resolution
// failures (domain.ErrMetadataNotFound, domain.InvalidMetadataError) affect
// only the entry they belong to.
type QueueRegistry interface {
	Queues(ctx context.Context) ([]string, error)
	Processors(ctx context.Context, queueID string) ([]string, error)
	ResolveQueueMetadata(ctx context.Context, queueID string) (domain.EntryMetadata, error)
	ResolveProcessorMetadata(ctx context.Context, queueID, taskType string) (domain.EntryMetadata, error)
}

// BacklogCounter reports how many tasks are waiting on a queue.
type BacklogCounter interface {
	CountWaiting(ctx context.Context, queueID string) (int64, error)
}

// ExecutionStore reads and records task execution history.
type ExecutionStore interface {
	ListInProgress(ctx context.Context, queueID, taskType string) ([]domain.Execution, error)
	ListAll(ctx context.Context, queueID, taskType string) ([]domain.Execution, error)
	Create(ctx context.Context, execution *domain.Execution) error
}

// ScheduleProvider looks up the recurrence configured for a queue+task-type
// pair. A pair without a schedule returns (nil, nil); that is not an error.
type ScheduleProvider interface {
	Lookup(ctx context.Context, queueID, taskType string) (*domain.Schedule, error)
}

// CommandSource is the read side of the run-command registry.
type CommandSource interface {
	Get(key string) (domain.RunCommand, bool)
}

// TaskQueue accepts task envelopes for workers to pick up.
type TaskQueue interface {
	Enqueue(ctx context.Context, envelope domain.TaskEnvelope) error
}

// DashboardSink receives freshly rendered dashboards for fan-out.
type DashboardSink interface {
	PublishDashboard(ctx context.Context, items []domain.DashboardItem)
}
