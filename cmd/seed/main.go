// Command seed populates postgres and redis with demo data so the board has
// something to show: execution history, schedules, waiting backlogs, and a few
// dead-letter entries. It reads the same registry file as the server.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	redis_adapter "queuepulse.board/internal/adapters/queue/redis"
	"queuepulse.board/internal/adapters/registry"
	"queuepulse.board/internal/adapters/repository/pg"
	"queuepulse.board/internal/config"
	"queuepulse.board/internal/core/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	registryPath := flag.String("registry", cfg.RegistryPath, "Path to the queue registry file")
	databaseURL := flag.String("database-url", cfg.DatabaseURL, "Postgres connection string")
	redisURL := flag.String("redis-url", cfg.RedisURL, "Redis connection URL")
	executions := flag.IntP("executions", "n", 6, "Execution history rows per processor")
	backlog := flag.Int("backlog", 5, "Waiting tasks to enqueue per queue")
	degrade := flag.String("degrade", "", "Queue to flood past the backlog threshold")
	deadLetters := flag.Int("dead-letters", 2, "Dead-letter entries to park per queue")
	flag.Parse()

	queueRegistry, err := registry.NewFileRegistry(*registryPath)
	if err != nil {
		log.Fatalf("failed to load queue registry: %v", err)
	}

	repo, err := pg.NewRepository(*databaseURL)
	if err != nil {
		log.Fatalf("failed to init postgres: %v", err)
	}

	queue, redisClient, err := redis_adapter.NewRedisAdapter(*redisURL)
	if err != nil {
		log.Fatalf("failed to init redis: %v", err)
	}
	dlq := redis_adapter.NewDeadLetterQueue(redisClient, queue)

	ctx := context.Background()
	queues, err := queueRegistry.Queues(ctx)
	if err != nil {
		log.Fatalf("failed to list queues: %v", err)
	}

	pair := 0
	for _, queueID := range queues {
		if strings.TrimSpace(queueID) == "" {
			continue
		}

		processors, err := queueRegistry.Processors(ctx, queueID)
		if err != nil {
			log.Printf("skipping queue %s: %v", queueID, err)
			continue
		}

		for _, taskType := range processors {
			seedExecutions(ctx, repo, queueID, taskType, *executions, pair)
			if pair%2 == 0 {
				seedSchedule(ctx, repo, queueID, taskType)
			}
			pair++
		}

		count := *backlog
		if queueID == *degrade {
			count = int(cfg.BacklogThreshold) + 50
			log.Printf("flooding queue %s with %d waiting tasks", queueID, count)
		}
		seedBacklog(ctx, queue, queueID, count)

		if len(processors) > 0 {
			seedDeadLetters(ctx, dlq, queueID, processors[0], *deadLetters)
		}
	}

	log.Printf("seeded %d processors across %d queues", pair, len(queues))
}

// seedExecutions writes a short history for one processor: mostly completed
// runs, the odd failure, and an in-progress run on every third processor.
func seedExecutions(ctx context.Context, repo *pg.Repository, queueID, taskType string, count, pair int) {
	now := time.Now()
	for i := 0; i < count; i++ {
		enqueued := now.Add(-time.Duration(i+1) * time.Hour)
		started := enqueued.Add(30 * time.Second)
		finished := started.Add(2 * time.Minute)

		execution := domain.Execution{
			ID:         "task-" + uuid.New().String(),
			QueueID:    queueID,
			TaskType:   taskType,
			State:      domain.ExecutionCompleted,
			EnqueuedAt: enqueued,
			StartedAt:  &started,
			FinishedAt: &finished,
			CreatedAt:  enqueued,
			UpdatedAt:  finished,
		}
		if i%4 == 3 {
			execution.State = domain.ExecutionFailed
			execution.Error = "exit status 1"
		}
		if err := repo.Create(ctx, &execution); err != nil {
			log.Printf("failed to seed execution for %s/%s: %v", queueID, taskType, err)
			return
		}
	}

	if pair%3 == 0 {
		started := now.Add(-45 * time.Second)
		execution := domain.Execution{
			ID:         "task-" + uuid.New().String(),
			QueueID:    queueID,
			TaskType:   taskType,
			State:      domain.ExecutionInProgress,
			EnqueuedAt: now.Add(-time.Minute),
			StartedAt:  &started,
			CreatedAt:  now.Add(-time.Minute),
			UpdatedAt:  started,
		}
		if err := repo.Create(ctx, &execution); err != nil {
			log.Printf("failed to seed running execution for %s/%s: %v", queueID, taskType, err)
		}
	}
}

func seedSchedule(ctx context.Context, repo *pg.Repository, queueID, taskType string) {
	now := time.Now()
	schedule := domain.Schedule{
		QueueID:     queueID,
		TaskType:    taskType,
		Expression:  "0 */6 * * *",
		Description: "Every 6 hours",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.UpsertSchedule(ctx, &schedule); err != nil {
		log.Printf("failed to seed schedule for %s/%s: %v", queueID, taskType, err)
	}
}

func seedBacklog(ctx context.Context, queue *redis_adapter.RedisAdapter, queueID string, count int) {
	now := time.Now()
	for i := 0; i < count; i++ {
		envelope := domain.TaskEnvelope{
			ExecutionID: "task-" + uuid.New().String(),
			QueueID:     queueID,
			TaskType:    "pending",
			EnqueuedAt:  now,
		}
		if err := queue.Enqueue(ctx, envelope); err != nil {
			log.Printf("failed to seed backlog for %s: %v", queueID, err)
			return
		}
	}
}

func seedDeadLetters(ctx context.Context, dlq *redis_adapter.DeadLetterQueue, queueID, taskType string, count int) {
	for i := 0; i < count; i++ {
		entry := redis_adapter.DeadLetterEntry{
			ExecutionID: "task-" + uuid.New().String(),
			QueueID:     queueID,
			TaskType:    taskType,
			FailedAt:    time.Now().Add(-time.Duration(i+1) * time.Hour),
			Reason:      fmt.Sprintf("retries exhausted after %d attempts", 3+i),
			Attempts:    3 + i,
		}
		if err := dlq.Add(ctx, entry); err != nil {
			log.Printf("failed to seed dead letter for %s: %v", queueID, err)
			return
		}
	}
}
