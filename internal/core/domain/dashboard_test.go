package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestItemID(t *testing.T) {
	if got := ItemID("emails", "send-digest"); got != "emails-send-digest" {
		t.Errorf("ItemID() = %q, want %q", got, "emails-send-digest")
	}

	// Hyphens in either part are not escaped, so distinct pairs can share an
	// identity. Consumers key off this scheme, so it stays.
	if ItemID("a-b", "c") != ItemID("a", "b-c") {
		t.Error("expected ambiguous pairs to share an identity")
	}
}

func TestScheduleDisplay(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		want     string
	}{
		{
			name:     "description preferred",
			schedule: Schedule{Expression: "0 */6 * * *", Description: "Every 6 hours"},
			want:     "Every 6 hours",
		},
		{
			name:     "expression fallback",
			schedule: Schedule{Expression: "0 */6 * * *"},
			want:     "0 */6 * * *",
		},
		{
			name:     "blank description falls back",
			schedule: Schedule{Expression: "@daily", Description: "   "},
			want:     "@daily",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schedule.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecutionView(t *testing.T) {
	enqueued := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	started := enqueued.Add(30 * time.Second)
	finished := started.Add(2 * time.Minute)

	execution := Execution{
		ID:         "task-7f3a",
		QueueID:    "emails",
		TaskType:   "send-digest",
		State:      ExecutionFailed,
		EnqueuedAt: enqueued,
		StartedAt:  &started,
		FinishedAt: &finished,
		Error:      "exit status 1",
		CreatedAt:  enqueued,
		UpdatedAt:  finished,
	}

	want := ExecutionView{
		ID:         "task-7f3a",
		State:      ExecutionFailed,
		EnqueuedAt: enqueued,
		StartedAt:  &started,
		FinishedAt: &finished,
		Error:      "exit status 1",
	}

	if diff := cmp.Diff(want, execution.View()); diff != "" {
		t.Errorf("View() mismatch (-want +got):\n%s", diff)
	}
}
