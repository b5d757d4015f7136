package domain

import (
	"time"
)

type ExecutionState string

const (
	ExecutionWaiting    ExecutionState = "waiting"
	ExecutionInProgress ExecutionState = "in_progress"
	ExecutionCompleted  ExecutionState = "completed"
	ExecutionFailed     ExecutionState = "failed"
	ExecutionCanceled   ExecutionState = "canceled"
)

// Execution is one recorded run of a task type on a queue. History is
// append-only; this service only ever reads it back for display.
type Execution struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	QueueID    string         `json:"queue_id" gorm:"index:idx_executions_pair"`
	TaskType   string         `json:"task_type" gorm:"index:idx_executions_pair"`
	State      ExecutionState `json:"state" gorm:"index"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (Execution) TableName() string {
	return "executions"
}

// ExecutionView is the display projection of an Execution used in dashboard
// body blocks.
type ExecutionView struct {
	ID         string         `json:"id"`
	State      ExecutionState `json:"state"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func (e Execution) View() ExecutionView {
	return ExecutionView{
		ID:         e.ID,
		State:      e.State,
		EnqueuedAt: e.EnqueuedAt,
		StartedAt:  e.StartedAt,
		FinishedAt: e.FinishedAt,
		Error:      e.Error,
	}
}
