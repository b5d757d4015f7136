package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"queuepulse.board/internal/core/domain"
)

type mockTaskQueue struct {
	EnqueueFunc func(ctx context.Context, envelope domain.TaskEnvelope) error
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, envelope domain.TaskEnvelope) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, envelope)
	}
	return nil
}

func TestTrigger_UnknownCommand(t *testing.T) {
	svc := NewTriggerService(NewRunCommandRegistry(), &mockStore{}, &mockTaskQueue{})

	if _, err := svc.Trigger(context.Background(), "cmd-missing"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestTrigger_RecordsAndEnqueues(t *testing.T) {
	commands := NewRunCommandRegistry()
	commands.Register(domain.RunCommand{ID: "cmd-1", Name: "Run now", QueueID: "emails", TaskType: "send-digest"})

	var created *domain.Execution
	store := &mockStore{
		CreateFunc: func(ctx context.Context, execution *domain.Execution) error {
			created = execution
			return nil
		},
	}
	var enqueued *domain.TaskEnvelope
	queue := &mockTaskQueue{
		EnqueueFunc: func(ctx context.Context, envelope domain.TaskEnvelope) error {
			enqueued = &envelope
			return nil
		},
	}

	svc := NewTriggerService(commands, store, queue)
	execution, err := svc.Trigger(context.Background(), "cmd-1")
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}

	if created == nil {
		t.Fatal("execution was not recorded")
	}
	if !strings.HasPrefix(execution.ID, "task-") {
		t.Errorf("execution ID %q missing task- prefix", execution.ID)
	}
	if execution.State != domain.ExecutionWaiting {
		t.Errorf("execution state = %s, want %s", execution.State, domain.ExecutionWaiting)
	}
	if execution.QueueID != "emails" || execution.TaskType != "send-digest" {
		t.Errorf("execution bound to %s/%s", execution.QueueID, execution.TaskType)
	}

	if enqueued == nil {
		t.Fatal("no envelope enqueued")
	}
	if enqueued.ExecutionID != execution.ID {
		t.Errorf("envelope references %s, want %s", enqueued.ExecutionID, execution.ID)
	}
	if enqueued.QueueID != "emails" || enqueued.TaskType != "send-digest" {
		t.Errorf("envelope bound to %s/%s", enqueued.QueueID, enqueued.TaskType)
	}
}

func TestTrigger_StoreFailureStopsEnqueue(t *testing.T) {
	commands := NewRunCommandRegistry()
	commands.Register(domain.RunCommand{ID: "cmd-1", Name: "Run now", QueueID: "emails", TaskType: "send-digest"})

	boom := errors.New("pg down")
	store := &mockStore{
		CreateFunc: func(ctx context.Context, execution *domain.Execution) error {
			return boom
		},
	}
	enqueueCalls := 0
	queue := &mockTaskQueue{
		EnqueueFunc: func(ctx context.Context, envelope domain.TaskEnvelope) error {
			enqueueCalls++
			return nil
		},
	}

	svc := NewTriggerService(commands, store, queue)
	if _, err := svc.Trigger(context.Background(), "cmd-1"); !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
	if enqueueCalls != 0 {
		t.Errorf("enqueue called %d times after store failure", enqueueCalls)
	}
}

func TestTrigger_EnqueueFailure(t *testing.T) {
	commands := NewRunCommandRegistry()
	commands.Register(domain.RunCommand{ID: "cmd-1", Name: "Run now", QueueID: "emails", TaskType: "send-digest"})

	boom := errors.New("redis down")
	queue := &mockTaskQueue{
		EnqueueFunc: func(ctx context.Context, envelope domain.TaskEnvelope) error {
			return boom
		},
	}

	svc := NewTriggerService(commands, &mockStore{}, queue)
	if _, err := svc.Trigger(context.Background(), "cmd-1"); !errors.Is(err, boom) {
		t.Errorf("expected enqueue error, got %v", err)
	}
}
