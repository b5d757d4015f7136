package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"queuepulse.board/internal/core/domain"
)

type captureSink struct {
	ch chan []domain.DashboardItem
}

func newCaptureSink() *captureSink {
	return &captureSink{ch: make(chan []domain.DashboardItem, 16)}
}

func (s *captureSink) PublishDashboard(ctx context.Context, items []domain.DashboardItem) {
	select {
	case s.ch <- items:
	default:
	}
}

func (s *captureSink) wait(t *testing.T) []domain.DashboardItem {
	t.Helper()
	select {
	case items := <-s.ch:
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a published dashboard")
		return nil
	}
}

func TestRefresher_PublishesToAllSinks(t *testing.T) {
	registry := singleQueueRegistry("emails", "send-digest", domain.EntryMetadata{})
	svc := NewDashboardService(registry, &mockBacklog{}, &mockStore{}, &mockSchedules{}, NewRunCommandRegistry(), DefaultBacklogThreshold)

	first := newCaptureSink()
	second := newCaptureSink()
	refresher := NewDashboardRefresher(svc, 5*time.Millisecond, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refresher.Start(ctx)

	for _, sink := range []*captureSink{first, second} {
		items := sink.wait(t)
		if len(items) != 1 || items[0].ID != "emails-send-digest" {
			t.Errorf("unexpected published dashboard: %+v", items)
		}
	}
}

func TestRefresher_RenderFailureSkipsTick(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	registry := &mockRegistry{
		QueuesFunc: func(ctx context.Context) ([]string, error) {
			if failing.Load() {
				return nil, errors.New("registry unavailable")
			}
			return []string{"emails"}, nil
		},
		ProcessorsFunc: func(ctx context.Context, queueID string) ([]string, error) {
			return []string{"send-digest"}, nil
		},
	}
	svc := NewDashboardService(registry, &mockBacklog{}, &mockStore{}, &mockSchedules{}, NewRunCommandRegistry(), DefaultBacklogThreshold)

	sink := newCaptureSink()
	refresher := NewDashboardRefresher(svc, 5*time.Millisecond, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refresher.Start(ctx)

	select {
	case items := <-sink.ch:
		t.Fatalf("dashboard published despite render failures: %+v", items)
	case <-time.After(50 * time.Millisecond):
	}

	// The loop must keep ticking after failures.
	failing.Store(false)
	items := sink.wait(t)
	if len(items) != 1 {
		t.Errorf("expected 1 item after recovery, got %d", len(items))
	}
}
