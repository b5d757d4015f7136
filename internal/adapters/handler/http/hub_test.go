package http

import (
	"context"
	"testing"
	"time"

	"queuepulse.board/internal/core/domain"
)

func registerClient(t *testing.T, hub *Hub, buffer int) *Client {
	t.Helper()
	client := &Client{hub: hub, send: make(chan Message, buffer)}
	select {
	case hub.register <- client:
	case <-time.After(time.Second):
		t.Fatal("timed out registering client")
	}
	return client
}

func TestHub_BroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	fast := registerClient(t, hub, 4)
	slow := registerClient(t, hub, 0) // nobody reads; the first send cannot be buffered

	hub.Broadcast(Message{Type: "dashboard"})
	// Broadcast blocks until the hub picks the message up, so once a second
	// broadcast is accepted the first fan-out has fully finished.
	hub.Broadcast(Message{Type: "dashboard"})

	hub.mu.Lock()
	_, slowStillRegistered := hub.clients[slow]
	remaining := len(hub.clients)
	hub.mu.Unlock()

	if slowStillRegistered {
		t.Error("slow client still registered after a blocked send")
	}
	if remaining != 1 {
		t.Errorf("expected 1 remaining client, got %d", remaining)
	}

	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("expected slow client's send channel to be closed")
		}
	default:
		t.Error("slow client's send channel was not closed")
	}

	if got := len(fast.send); got != 2 {
		t.Errorf("fast client buffered %d messages, want 2", got)
	}
}

func TestHub_ReplaysLatestSnapshotOnRegister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	items := []domain.DashboardItem{{ID: "emails-send-digest", Status: domain.StatusStopped}}
	hub.PublishDashboard(context.Background(), items)

	late := registerClient(t, hub, 4)

	select {
	case msg := <-late.send:
		if msg.Type != "dashboard" {
			t.Errorf("replayed message type = %q, want dashboard", msg.Type)
		}
		replayed, ok := msg.Payload.([]domain.DashboardItem)
		if !ok {
			t.Fatalf("unexpected payload type %T", msg.Payload)
		}
		if len(replayed) != 1 || replayed[0].ID != "emails-send-digest" {
			t.Errorf("unexpected replayed snapshot: %+v", replayed)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot replayed to a late-joining client")
	}
}
