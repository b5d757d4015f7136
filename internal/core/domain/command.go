package domain

import "time"

// RunCommand is a registered operator action that starts one task type on one
// queue. The dashboard reads ID and Name; the trigger path uses the target
// fields to act on it.
type RunCommand struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	QueueID  string `json:"queue_id"`
	TaskType string `json:"task_type"`
}

// TaskEnvelope is the message pushed onto a queue when a run command fires.
// Workers outside this service consume it.
type TaskEnvelope struct {
	ExecutionID string    `json:"execution_id"`
	QueueID     string    `json:"queue_id"`
	TaskType    string    `json:"task_type"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}
