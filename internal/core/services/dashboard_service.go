package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"queuepulse.board/internal/core/domain"
	"queuepulse.board/internal/core/logger"
	"queuepulse.board/internal/core/ports"
	"queuepulse.board/internal/core/tracing"
)

// OnDemandNotice is shown for pairs that have no recurrence configured.
const OnDemandNotice = "Runs on demand only."

// ErrItemNotFound is returned when no dashboard item matches a requested ID.
var ErrItemNotFound = errors.New("dashboard item not found")

// DashboardService assembles the operator dashboard. Every render recomputes
// from current collaborator state; nothing is cached between calls.
type DashboardService struct {
	registry  ports.QueueRegistry
	backlog   ports.BacklogCounter
	store     ports.ExecutionStore
	schedules ports.ScheduleProvider
	commands  ports.CommandSource
	threshold int64
}

func NewDashboardService(
	registry ports.QueueRegistry,
	backlog ports.BacklogCounter,
	store ports.ExecutionStore,
	schedules ports.ScheduleProvider,
	commands ports.CommandSource,
	threshold int64,
) *DashboardService {
	if threshold <= 0 {
		threshold = DefaultBacklogThreshold
	}
	return &DashboardService{
		registry:  registry,
		backlog:   backlog,
		store:     store,
		schedules: schedules,
		commands:  commands,
		threshold: threshold,
	}
}

// Render produces one item per visible queue+processor pair, in registry
// order. Entries whose metadata fails to resolve are skipped with a warning;
// hidden and blank-ID entries are skipped silently. Any other collaborator
// failure aborts the whole render.
func (s *DashboardService) Render(ctx context.Context) ([]domain.DashboardItem, error) {
	ctx, span := tracing.StartSpan(ctx, "dashboard.render")
	defer span.End()

	queueIDs, err := s.registry.Queues(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list queues: %w", err)
	}

	items := make([]domain.DashboardItem, 0, len(queueIDs))
	for _, queueID := range queueIDs {
		if strings.TrimSpace(queueID) == "" {
			continue
		}

		queueMeta, err := s.registry.ResolveQueueMetadata(ctx, queueID)
		if err != nil {
			logger.WarnContext(ctx, "skipping queue, metadata resolution failed",
				"queue", queueID, "error", err)
			continue
		}
		if queueMeta.Hidden {
			continue
		}

		taskTypes, err := s.registry.Processors(ctx, queueID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to list processors for queue %s: %w", queueID, err)
		}

		for _, taskType := range taskTypes {
			procMeta, err := s.registry.ResolveProcessorMetadata(ctx, queueID, taskType)
			if err != nil {
				logger.WarnContext(ctx, "skipping processor, metadata resolution failed",
					"queue", queueID, "task_type", taskType, "error", err)
				continue
			}
			if procMeta.Hidden {
				continue
			}

			item, err := s.buildItem(ctx, queueID, taskType, procMeta)
			if err != nil {
				span.RecordError(err)
				return nil, err
			}
			items = append(items, item)
		}
	}

	span.SetAttributes(attribute.Int("dashboard.items", len(items)))
	return items, nil
}

// RenderItem renders the dashboard and returns the item with the given ID.
// IDs are not guaranteed unique; the earliest match in registry order wins.
func (s *DashboardService) RenderItem(ctx context.Context, id string) (domain.DashboardItem, error) {
	items, err := s.Render(ctx)
	if err != nil {
		return domain.DashboardItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.DashboardItem{}, ErrItemNotFound
}

// Threshold returns the waiting-count threshold the service renders with.
func (s *DashboardService) Threshold() int64 {
	return s.threshold
}

func (s *DashboardService) buildItem(ctx context.Context, queueID, taskType string, meta domain.EntryMetadata) (domain.DashboardItem, error) {
	waiting, err := s.backlog.CountWaiting(ctx, queueID)
	if err != nil {
		return domain.DashboardItem{}, fmt.Errorf("failed to count waiting tasks for queue %s: %w", queueID, err)
	}
	degraded := Backlogged(waiting, s.threshold)

	body := make([]domain.BodyBlock, 0, 4)
	if strings.TrimSpace(meta.Description) != "" {
		body = append(body, domain.BodyBlock{
			Kind: domain.BlockParagraph,
			Text: meta.Description,
		})
	}
	if degraded {
		body = append(body, domain.BodyBlock{
			Kind:      domain.BlockBanner,
			Text:      fmt.Sprintf("%d tasks are waiting, above the threshold of %d. Only in-progress executions are shown.", waiting, s.threshold),
			Waiting:   waiting,
			Threshold: s.threshold,
		})
	}

	schedule, err := s.schedules.Lookup(ctx, queueID, taskType)
	if err != nil {
		return domain.DashboardItem{}, fmt.Errorf("failed to look up schedule for %s/%s: %w", queueID, taskType, err)
	}

	// Backpressure tradeoff: a backed-up queue would make the full history
	// scan arbitrarily expensive, so degraded pairs fetch in-progress rows
	// only. The fetch choice feeds status derivation and the execution list;
	// the banner above depends on the count alone.
	var executions []domain.Execution
	if degraded {
		executions, err = s.store.ListInProgress(ctx, queueID, taskType)
	} else {
		executions, err = s.store.ListAll(ctx, queueID, taskType)
	}
	if err != nil {
		return domain.DashboardItem{}, fmt.Errorf("failed to fetch executions for %s/%s: %w", queueID, taskType, err)
	}

	var isRunning, isScheduled bool
	for _, exec := range executions {
		switch exec.State {
		case domain.ExecutionInProgress:
			isRunning = true
		case domain.ExecutionWaiting:
			isScheduled = true
		}
	}

	// A degraded pair is labeled Running even without a confirmed in-progress
	// execution: with thousands of tasks waiting the workers are assumed busy,
	// and the in-progress-only fetch may race against task turnover.
	status := domain.StatusStopped
	switch {
	case isRunning || degraded:
		status = domain.StatusRunning
	case isScheduled:
		status = domain.StatusScheduled
	}

	id := domain.ItemID(queueID, taskType)
	title := taskType
	if strings.TrimSpace(meta.DisplayName) != "" {
		title = meta.DisplayName
	}

	var commands []domain.CommandRef
	if meta.ShowRunCommand {
		if cmd, ok := s.commands.Get(id); ok {
			commands = append(commands, domain.CommandRef{
				CommandID: cmd.ID,
				Title:     cmd.Name,
				Style:     domain.CommandStyleLink,
			})
		}
	}

	scheduleText := OnDemandNotice
	if schedule != nil {
		scheduleText = schedule.Display()
	}
	body = append(body, domain.BodyBlock{
		Kind: domain.BlockSchedule,
		Text: scheduleText,
	})

	views := make([]domain.ExecutionView, 0, len(executions))
	for _, exec := range executions {
		views = append(views, exec.View())
	}
	body = append(body, domain.BodyBlock{
		Kind:       domain.BlockExecutions,
		Executions: views,
	})

	return domain.DashboardItem{
		ID:       id,
		Title:    title,
		Status:   status,
		Body:     body,
		Commands: commands,
	}, nil
}
