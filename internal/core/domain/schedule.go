package domain

import (
	"strings"
	"time"
)

// Schedule describes automatic re-triggering of a task type on a queue. The
// board only displays schedules; computing occurrences is the scheduler's job.
type Schedule struct {
	QueueID     string    `json:"queue_id" gorm:"primaryKey"`
	TaskType    string    `json:"task_type" gorm:"primaryKey"`
	Expression  string    `json:"expression"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// Display returns the operator-facing schedule text: the description when one
// was configured, the raw expression otherwise.
func (s Schedule) Display() string {
	if strings.TrimSpace(s.Description) != "" {
		return s.Description
	}
	return s.Expression
}
