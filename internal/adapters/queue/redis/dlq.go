package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"queuepulse.board/internal/core/domain"
	"queuepulse.board/internal/core/ports"
)

// ErrDeadLetterNotFound is returned when an execution is not parked in a
// queue's dead-letter set.
var ErrDeadLetterNotFound = errors.New("execution not found in dead-letter set")

// DeadLetterQueue reads and drains the per-queue sets where workers park
// permanently failed tasks. Entries live in a sorted set scored by failure
// time, with the full payload stored alongside.
type DeadLetterQueue struct {
	client *redis.Client
	tasks  ports.TaskQueue
}

// DeadLetterEntry is the payload workers write when parking a task.
type DeadLetterEntry struct {
	ExecutionID string    `json:"execution_id"`
	QueueID     string    `json:"queue_id"`
	TaskType    string    `json:"task_type"`
	FailedAt    time.Time `json:"failed_at"`
	Reason      string    `json:"reason"`
	Attempts    int       `json:"attempts"`
}

func NewDeadLetterQueue(client *redis.Client, tasks ports.TaskQueue) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, tasks: tasks}
}

func deadLetterKey(queueID string) string {
	return "dlq:" + queueID
}

func deadLetterMetaKey(queueID, executionID string) string {
	return "dlq:" + queueID + ":meta:" + executionID
}

// Add parks a failed execution. The dashboard only calls this from the
// seeder; in production the workers write these entries.
func (dlq *DeadLetterQueue) Add(ctx context.Context, entry DeadLetterEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal dead-letter entry: %w", err)
	}

	score := float64(entry.FailedAt.Unix())
	if err := dlq.client.ZAdd(ctx, deadLetterKey(entry.QueueID), redis.Z{
		Score:  score,
		Member: entry.ExecutionID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add dead-letter entry: %w", err)
	}

	metaKey := deadLetterMetaKey(entry.QueueID, entry.ExecutionID)
	if err := dlq.client.Set(ctx, metaKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store dead-letter payload: %w", err)
	}

	return nil
}

// Get retrieves one parked execution.
func (dlq *DeadLetterQueue) Get(ctx context.Context, queueID, executionID string) (*DeadLetterEntry, error) {
	data, err := dlq.client.Get(ctx, deadLetterMetaKey(queueID, executionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrDeadLetterNotFound
		}
		return nil, fmt.Errorf("failed to get dead-letter entry: %w", err)
	}

	var entry DeadLetterEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dead-letter entry: %w", err)
	}

	return &entry, nil
}

// List returns parked executions for a queue, newest failures first.
func (dlq *DeadLetterQueue) List(ctx context.Context, queueID string, offset, limit int64) ([]*DeadLetterEntry, error) {
	executionIDs, err := dlq.client.ZRevRange(ctx, deadLetterKey(queueID), offset, offset+limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list dead-letter set: %w", err)
	}

	entries := make([]*DeadLetterEntry, 0, len(executionIDs))
	for _, executionID := range executionIDs {
		entry, err := dlq.Get(ctx, queueID, executionID)
		if err != nil {
			// Skip if payload missing
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Remove drops a parked execution and its payload.
func (dlq *DeadLetterQueue) Remove(ctx context.Context, queueID, executionID string) error {
	if err := dlq.client.ZRem(ctx, deadLetterKey(queueID), executionID).Err(); err != nil {
		return fmt.Errorf("failed to remove dead-letter entry: %w", err)
	}

	if err := dlq.client.Del(ctx, deadLetterMetaKey(queueID, executionID)).Err(); err != nil {
		return fmt.Errorf("failed to remove dead-letter payload: %w", err)
	}

	return nil
}

// Count returns the number of parked executions for a queue.
func (dlq *DeadLetterQueue) Count(ctx context.Context, queueID string) (int64, error) {
	count, err := dlq.client.ZCard(ctx, deadLetterKey(queueID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count dead-letter set: %w", err)
	}
	return count, nil
}

// Retry removes a parked execution and re-enqueues it as a fresh envelope.
func (dlq *DeadLetterQueue) Retry(ctx context.Context, queueID, executionID string) (*DeadLetterEntry, error) {
	entry, err := dlq.Get(ctx, queueID, executionID)
	if err != nil {
		return nil, err
	}

	if err := dlq.Remove(ctx, queueID, executionID); err != nil {
		return nil, err
	}

	envelope := domain.TaskEnvelope{
		ExecutionID: entry.ExecutionID,
		QueueID:     entry.QueueID,
		TaskType:    entry.TaskType,
		EnqueuedAt:  time.Now(),
	}
	if err := dlq.tasks.Enqueue(ctx, envelope); err != nil {
		return nil, fmt.Errorf("failed to re-enqueue dead-letter task: %w", err)
	}

	return entry, nil
}
