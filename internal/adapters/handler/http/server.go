package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"queuepulse.board/internal/adapters/handler/mqtt"
	qredis "queuepulse.board/internal/adapters/queue/redis"
	"queuepulse.board/internal/core/services"
)

type Server struct {
	router     *chi.Mux
	dashboard  *services.DashboardService
	trigger    *services.TriggerService
	healthSvc  *services.HealthService
	deadLetter *qredis.DeadLetterQueue
	hub        *Hub
	events     *mqtt.Publisher // optional, nil when no broker configured
}

func NewServer(
	dashboard *services.DashboardService,
	trigger *services.TriggerService,
	healthSvc *services.HealthService,
	deadLetter *qredis.DeadLetterQueue,
	hub *Hub,
	events *mqtt.Publisher,
) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		dashboard:  dashboard,
		trigger:    trigger,
		healthSvc:  healthSvc,
		deadLetter: deadLetter,
		hub:        hub,
		events:     events,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(MetricsMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Metrics endpoint
	s.router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		MetricsHandler().ServeHTTP(w, r)
	})

	// Kubernetes probes
	s.router.Get("/health/live", s.handleLiveness)
	s.router.Get("/health/ready", s.handleReadiness)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/health/detailed", s.handleDetailedHealth)
	s.router.Get("/api/ws", s.handleWS)

	s.router.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/", s.handleDashboard)
		r.Get("/{id}", s.handleDashboardItem)
	})

	s.router.Route("/api/commands", func(r chi.Router) {
		r.Post("/{id}/run", s.handleRunCommand)
	})

	s.router.Route("/api/queues/{queueID}/dead", func(r chi.Router) {
		r.Get("/", s.handleListDeadLetters)
		r.Post("/{executionID}/retry", s.handleRetryDeadLetter)
	})

	// Serve static files for frontend (simple fs server for now)
	fileServer := http.FileServer(http.Dir("./web"))
	s.router.Handle("/*", fileServer)
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := s.healthSvc.SimpleHealthCheck(r.Context())
	w.WriteHeader(code)
	w.Write([]byte(status))
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	// Liveness probe - just check if server is running
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	// Readiness probe - check if server can handle requests
	status, code := s.healthSvc.SimpleHealthCheck(r.Context())
	w.WriteHeader(code)
	w.Write([]byte(status))
}

func (s *Server) handleDetailedHealth(w http.ResponseWriter, r *http.Request) {
	report := s.healthSvc.CheckHealth(r.Context())

	// Set appropriate status code based on health status
	statusCode := http.StatusOK
	switch report.Status {
	case services.HealthStatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
	case services.HealthStatusDegraded:
		statusCode = http.StatusOK // Still serving requests
	}

	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ServeWs(s.hub, w, r)
}

// handleDashboard renders the full dashboard. A per-entry misconfiguration is
// absorbed by the render with a warning; a broken backing store surfaces here
// as a 500.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	items, err := s.dashboard.Render(r.Context())
	if err != nil {
		RecordDashboardRender("error", time.Since(start), 0)
		http.Error(w, `{"error": "Failed to render dashboard", "details": "`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	RecordDashboardRender("ok", time.Since(start), len(items))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (s *Server) handleDashboardItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := s.dashboard.RenderItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			http.Error(w, `{"error": "No such dashboard item"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to render dashboard", "details": "`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (s *Server) handleRunCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	execution, err := s.trigger.Trigger(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCommand) {
			http.Error(w, `{"error": "Unknown command"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to trigger command", "details": "`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	RecordCommandTriggered(execution.QueueID)

	// Broadcast so open dashboards reflect the new execution promptly
	s.hub.Broadcast(Message{
		Type:    "command_triggered",
		Payload: execution.View(),
	})
	if s.events != nil {
		s.events.PublishCommandTriggered(execution.View())
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(execution.View())
}

func (s *Server) handleListDeadLetters(w http.ResponseWriter, r *http.Request) {
	queueID := chi.URLParam(r, "queueID")

	// Parse pagination params
	offset := 0
	limit := 20

	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}

	entries, err := s.deadLetter.List(r.Context(), queueID, int64(offset), int64(limit))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	total, err := s.deadLetter.Count(r.Context(), queueID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"entries": entries,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

func (s *Server) handleRetryDeadLetter(w http.ResponseWriter, r *http.Request) {
	queueID := chi.URLParam(r, "queueID")
	executionID := chi.URLParam(r, "executionID")

	entry, err := s.deadLetter.Retry(r.Context(), queueID, executionID)
	if err != nil {
		if errors.Is(err, qredis.ErrDeadLetterNotFound) {
			http.Error(w, `{"error": "Execution not in dead-letter set"}`, http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.hub.Broadcast(Message{
		Type:    "task_requeued",
		Payload: entry,
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(entry)
}
