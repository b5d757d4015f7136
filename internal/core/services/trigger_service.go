package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"queuepulse.board/internal/core/domain"
	"queuepulse.board/internal/core/logger"
	"queuepulse.board/internal/core/ports"
)

// ErrUnknownCommand is returned when a trigger request names a command ID
// that was never registered.
var ErrUnknownCommand = errors.New("unknown command")

// TriggerService starts a task manually from a dashboard run command: it
// records a waiting execution and hands an envelope to the task queue.
type TriggerService struct {
	commands *RunCommandRegistry
	store    ports.ExecutionStore
	queue    ports.TaskQueue
}

func NewTriggerService(commands *RunCommandRegistry, store ports.ExecutionStore, queue ports.TaskQueue) *TriggerService {
	return &TriggerService{
		commands: commands,
		store:    store,
		queue:    queue,
	}
}

// Trigger resolves the command and enqueues one task for its queue and task
// type. The execution is recorded before enqueueing so the dashboard shows
// the pair as Scheduled even if a worker has not picked the task up yet.
func (s *TriggerService) Trigger(ctx context.Context, commandID string) (*domain.Execution, error) {
	cmd, ok := s.commands.Find(commandID)
	if !ok {
		return nil, ErrUnknownCommand
	}

	now := time.Now()
	execution := &domain.Execution{
		ID:         fmt.Sprintf("task-%s", uuid.New().String()),
		QueueID:    cmd.QueueID,
		TaskType:   cmd.TaskType,
		State:      domain.ExecutionWaiting,
		EnqueuedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to record execution: %w", err)
	}

	envelope := domain.TaskEnvelope{
		ExecutionID: execution.ID,
		QueueID:     cmd.QueueID,
		TaskType:    cmd.TaskType,
		EnqueuedAt:  now,
	}
	if err := s.queue.Enqueue(ctx, envelope); err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.InfoContext(ctx, "run command triggered",
		"command", commandID,
		"queue", cmd.QueueID,
		"task_type", cmd.TaskType,
		"execution", execution.ID)

	return execution, nil
}
