package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"flowboard/application/commands/bus"
	"flowboard/application/ports"
	querybus "flowboard/application/queries/bus"
	"flowboard/infrastructure/config"
	"flowboard/interfaces/http/rest/handlers"
	"flowboard/interfaces/http/rest/middleware"
	pkgerrors "flowboard/pkg/errors"
	"flowboard/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	backend    ports.ProcessingBackend
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	backend ports.ProcessingBackend,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		commandBus: commandBus,
		queryBus:   queryBus,
		backend:    backend,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and metrics
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(
			rt.metrics.Registry(),
			promhttp.HandlerOpts{},
		))
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		catalogHandler := handlers.NewCatalogHandler(rt.queryBus, errorHandler, rt.logger)
		r.Get("/catalog", catalogHandler.GetCatalog)

		workflowHandler := handlers.NewWorkflowHandler(
			rt.commandBus,
			rt.queryBus,
			errorHandler,
			rt.logger,
			rt.cfg.UploadLimitBytes,
		)
		r.Route("/workflow", func(r chi.Router) {
			r.Get("/", workflowHandler.GetWorkflow)
			r.Post("/nodes", workflowHandler.AddNode)
			r.Delete("/nodes/{nodeID}", workflowHandler.DeleteNode)
			r.Put("/nodes/{nodeID}/config", workflowHandler.SaveNodeConfig)
			r.Post("/edges", workflowHandler.CreateEdge)
			r.Delete("/edges/{edgeID}", workflowHandler.DeleteEdge)
		})

		runHandler := handlers.NewRunHandler(
			rt.commandBus,
			rt.queryBus,
			rt.backend,
			errorHandler,
			rt.logger,
		)
		r.Get("/files/{fileID}", runHandler.GetFileInfo)

		r.Route("/runs", func(r chi.Router) {
			r.Post("/", runHandler.StartRun)
			r.Get("/current", runHandler.GetRunStatus)
			r.Post("/current/cancel", runHandler.CancelRun)
			r.Get("/{jobID}/download", runHandler.DownloadResults)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports whether the processing backend is reachable
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := rt.backend.Health(req.Context()); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","backend":"unreachable"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
