package services

import (
	"fmt"
	"sync"
	"testing"

	"queuepulse.board/internal/core/domain"
)

func TestRunCommandRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRunCommandRegistry()

	cmd := domain.RunCommand{
		ID:       "cmd-1",
		Name:     "Run now",
		QueueID:  "emails",
		TaskType: "send-digest",
	}
	reg.Register(cmd)

	got, ok := reg.Get("emails-send-digest")
	if !ok {
		t.Fatal("expected command registered under emails-send-digest")
	}
	if got != cmd {
		t.Errorf("Get returned %+v, want %+v", got, cmd)
	}

	if _, ok := reg.Get("emails-other"); ok {
		t.Error("expected miss for unregistered key")
	}
}

func TestRunCommandRegistry_RegisterReplaces(t *testing.T) {
	reg := NewRunCommandRegistry()

	reg.Register(domain.RunCommand{ID: "cmd-1", Name: "Run now", QueueID: "emails", TaskType: "send-digest"})
	reg.Register(domain.RunCommand{ID: "cmd-2", Name: "Run immediately", QueueID: "emails", TaskType: "send-digest"})

	got, ok := reg.Get("emails-send-digest")
	if !ok {
		t.Fatal("expected command registered")
	}
	if got.ID != "cmd-2" {
		t.Errorf("expected later registration to win, got %s", got.ID)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRunCommandRegistry_Find(t *testing.T) {
	reg := NewRunCommandRegistry()

	reg.Register(domain.RunCommand{ID: "cmd-a", Name: "Run now", QueueID: "emails", TaskType: "send-digest"})
	reg.Register(domain.RunCommand{ID: "cmd-b", Name: "Run now", QueueID: "media", TaskType: "transcode"})

	got, ok := reg.Find("cmd-b")
	if !ok {
		t.Fatal("expected to find cmd-b")
	}
	if got.QueueID != "media" || got.TaskType != "transcode" {
		t.Errorf("Find returned wrong command: %+v", got)
	}

	if _, ok := reg.Find("cmd-missing"); ok {
		t.Error("expected miss for unknown command ID")
	}
}

// Item keys are ambiguous by construction: queue "a-b" task "c" and queue "a"
// task "b-c" share a key, so the later registration shadows the earlier one.
func TestRunCommandRegistry_AmbiguousKeysCollide(t *testing.T) {
	reg := NewRunCommandRegistry()

	reg.Register(domain.RunCommand{ID: "cmd-1", Name: "Run now", QueueID: "a-b", TaskType: "c"})
	reg.Register(domain.RunCommand{ID: "cmd-2", Name: "Run now", QueueID: "a", TaskType: "b-c"})

	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (keys collide)", reg.Len())
	}
	got, _ := reg.Get("a-b-c")
	if got.ID != "cmd-2" {
		t.Errorf("expected cmd-2 to shadow cmd-1, got %s", got.ID)
	}
}

func TestRunCommandRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRunCommandRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			reg.Register(domain.RunCommand{
				ID:       fmt.Sprintf("cmd-%d", n),
				Name:     "Run now",
				QueueID:  fmt.Sprintf("queue-%d", n),
				TaskType: "work",
			})
		}(i)
		go func(n int) {
			defer wg.Done()
			reg.Get(fmt.Sprintf("queue-%d-work", n))
		}(i)
	}
	wg.Wait()

	if reg.Len() != 10 {
		t.Errorf("Len = %d, want 10", reg.Len())
	}
}
