package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	http_handler "queuepulse.board/internal/adapters/handler/http"
	"queuepulse.board/internal/adapters/handler/mqtt"
	redis_adapter "queuepulse.board/internal/adapters/queue/redis"
	"queuepulse.board/internal/adapters/registry"
	"queuepulse.board/internal/adapters/repository/pg"
	"queuepulse.board/internal/config"
	"queuepulse.board/internal/core/domain"
	"queuepulse.board/internal/core/logger"
	"queuepulse.board/internal/core/ports"
	"queuepulse.board/internal/core/services"
	"queuepulse.board/internal/core/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize structured logger
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting QueuePulse Board", "version", "0.1.0")

	// Initialize tracing
	var shutdownTracing func(context.Context) error
	if cfg.EnableTracing {
		shutdownTracing, err = tracing.Init(cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("Failed to initialize tracing", "error", err)
		} else {
			logger.Info("Tracing initialized", "endpoint", cfg.OTLPEndpoint)
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					logger.Error("Failed to shutdown tracing", "error", err)
				}
			}()
		}
	}

	// Initialize adapters
	repo, err := pg.NewRepository(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to init postgres", "error", err)
		log.Fatalf("failed to init postgres: %v", err)
	}

	queue, redisClient, err := redis_adapter.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to init redis", "error", err)
		log.Fatalf("failed to init redis: %v", err)
	}

	queueRegistry, err := registry.NewFileRegistry(cfg.RegistryPath)
	if err != nil {
		logger.Error("Failed to load queue registry", "error", err, "path", cfg.RegistryPath)
		log.Fatalf("failed to load queue registry: %v", err)
	}

	// Register run commands for every processor that opts in
	commands := services.NewRunCommandRegistry()
	registerRunCommands(context.Background(), queueRegistry, commands)
	logger.Info("Run commands registered", "count", commands.Len())

	// Initialize domain services
	dashboardService := services.NewDashboardService(queueRegistry, queue, repo, repo, commands, cfg.BacklogThreshold)
	triggerService := services.NewTriggerService(commands, repo, queue)
	healthService := services.NewHealthService(repo.DB(), redisClient, queueRegistry, "0.1.0")

	// Initialize HTTP handlers
	hub := http_handler.NewHub()
	go hub.Run()

	// Initialize MQTT Publisher
	sinks := []ports.DashboardSink{hub}
	var mqttPublisher *mqtt.Publisher
	if cfg.MQTTBroker != "" {
		mqttPublisher, err = mqtt.NewPublisher(cfg.MQTTBroker)
		if err != nil {
			logger.Error("Failed to init MQTT publisher", "error", err)
		} else {
			logger.Info("MQTT Publisher started", "broker", cfg.MQTTBroker)
			sinks = append(sinks, mqttPublisher)
		}
	}

	// Start the periodic dashboard refresher
	refreshCtx, stopRefresher := context.WithCancel(context.Background())
	refresher := services.NewDashboardRefresher(dashboardService, cfg.RefreshInterval, sinks...)
	go refresher.Start(refreshCtx)

	deadLetters := redis_adapter.NewDeadLetterQueue(redisClient, queue)

	httpServer := http_handler.NewServer(dashboardService, triggerService, healthService, deadLetters, hub, mqttPublisher)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down gracefully...")
		stopRefresher()
		if shutdownTracing != nil {
			shutdownTracing(context.Background())
		}
		os.Exit(0)
	}()

	logger.Info("HTTP Server starting", "port", cfg.HTTPPort)
	if err := httpServer.Run(":" + cfg.HTTPPort); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("failed to serve http: %v", err)
	}
}

// registerRunCommands walks the registry and registers a "Run now" command
// for every processor whose metadata opts in. Entries that fail to resolve
// are skipped; the dashboard applies the same tolerance when rendering.
func registerRunCommands(ctx context.Context, reg ports.QueueRegistry, commands *services.RunCommandRegistry) {
	queues, err := reg.Queues(ctx)
	if err != nil {
		logger.Error("Failed to list queues for command registration", "error", err)
		return
	}

	for _, queueID := range queues {
		if strings.TrimSpace(queueID) == "" {
			continue
		}
		processors, err := reg.Processors(ctx, queueID)
		if err != nil {
			logger.Warn("Skipping queue during command registration", "queue", queueID, "error", err)
			continue
		}
		for _, taskType := range processors {
			meta, err := reg.ResolveProcessorMetadata(ctx, queueID, taskType)
			if err != nil {
				logger.Warn("Skipping processor during command registration", "queue", queueID, "task_type", taskType, "error", err)
				continue
			}
			if !meta.ShowRunCommand {
				continue
			}
			commands.Register(domain.RunCommand{
				ID:       "cmd-" + uuid.New().String(),
				Name:     "Run now",
				QueueID:  queueID,
				TaskType: taskType,
			})
		}
	}
}
