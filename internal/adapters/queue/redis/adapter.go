package redis

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"queuepulse.board/internal/core/domain"
)

const queueKeyPrefix = "queue:"

var waitingTasks = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "queue_waiting_tasks",
		Help: "Waiting tasks per queue, as of the last count",
	},
	[]string{"queue"},
)

// QueueKey returns the redis list holding a queue's waiting tasks.
func QueueKey(queueID string) string {
	return queueKeyPrefix + queueID
}

// RedisAdapter measures queue backlogs and enqueues manually triggered tasks.
// Workers own the lists; the dashboard only appends to and measures them.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(url string) (*RedisAdapter, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	return &RedisAdapter{client: client}, client, nil
}

// CountWaiting returns the backlog length for a queue.
func (r *RedisAdapter) CountWaiting(ctx context.Context, queueID string) (int64, error) {
	count, err := r.client.LLen(ctx, QueueKey(queueID)).Result()
	if err != nil {
		return 0, err
	}
	waitingTasks.WithLabelValues(queueID).Set(float64(count))
	return count, nil
}

// Enqueue appends a task envelope to the tail of the queue's list.
func (r *RedisAdapter) Enqueue(ctx context.Context, envelope domain.TaskEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, QueueKey(envelope.QueueID), data).Err()
}
