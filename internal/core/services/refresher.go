package services

import (
	"context"
	"time"

	"queuepulse.board/internal/core/logger"
	"queuepulse.board/internal/core/ports"
)

const defaultRefreshInterval = 15 * time.Second

// DashboardRefresher re-renders the dashboard on a fixed interval and pushes
// the result to every sink, so websocket and MQTT consumers see fresh state
// without polling the HTTP API.
type DashboardRefresher struct {
	dashboard *DashboardService
	sinks     []ports.DashboardSink
	interval  time.Duration
}

func NewDashboardRefresher(dashboard *DashboardService, interval time.Duration, sinks ...ports.DashboardSink) *DashboardRefresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &DashboardRefresher{
		dashboard: dashboard,
		sinks:     sinks,
		interval:  interval,
	}
}

// Start renders once immediately, then on every tick until ctx is canceled.
// A failed render is logged and the tick skipped; the next tick retries.
func (r *DashboardRefresher) Start(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *DashboardRefresher) refresh(ctx context.Context) {
	items, err := r.dashboard.Render(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "dashboard refresh failed", "error", err)
		return
	}

	for _, sink := range r.sinks {
		sink.PublishDashboard(ctx, items)
	}
}
