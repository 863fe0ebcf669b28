package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
	"flowboard/application/ports"
	"flowboard/application/queries"
	querybus "flowboard/application/queries/bus"
	"flowboard/application/run"
	"flowboard/application/services"
	"flowboard/domain/catalog"
	"flowboard/domain/workflow"
	backendhttp "flowboard/infrastructure/backend"
	"flowboard/infrastructure/config"
	"flowboard/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideCatalog creates the built-in agent catalog
func ProvideCatalog() *catalog.Catalog {
	return catalog.NewCatalog()
}

// ProvideGraph creates the workflow graph pre-seeded with the default
// three-node pipeline
func ProvideGraph(cat *catalog.Catalog) *workflow.Graph {
	return workflow.NewDefaultGraph(cat)
}

// ProvideMetrics creates the Prometheus metrics collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("flowboard")
}

// ProvideBackend creates the processing backend client
func ProvideBackend(cfg *config.Config, logger *zap.Logger) ports.ProcessingBackend {
	return backendhttp.NewHTTPClient(cfg.BackendBaseURL, cfg.RequestTimeout, logger)
}

// ProvideOrchestrator creates the run orchestrator
func ProvideOrchestrator(
	graph *workflow.Graph,
	backend ports.ProcessingBackend,
	metrics *observability.Collector,
	logger *zap.Logger,
	cfg *config.Config,
) *run.Orchestrator {
	return run.NewOrchestrator(
		graph,
		backend,
		metrics,
		logger,
		cfg.PollInterval,
		cfg.JobTimeout,
	)
}

// ProvideUploadService creates the upload service
func ProvideUploadService(
	graph *workflow.Graph,
	backend ports.ProcessingBackend,
	orchestrator *run.Orchestrator,
	logger *zap.Logger,
) *services.UploadService {
	return services.NewUploadService(graph, backend, orchestrator, logger)
}

// busLogger adapts zap's sugared logger to the bus logging interface
type busLogger struct {
	s *zap.SugaredLogger
}

func (l busLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l busLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

// ProvideCommandBus creates a command bus with every handler registered
// behind the logging and validation middleware pipeline
func ProvideCommandBus(
	graph *workflow.Graph,
	orchestrator *run.Orchestrator,
	uploads *services.UploadService,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(
		bus.LoggingMiddleware(busLogger{s: logger.Sugar()}),
		bus.ValidationMiddleware(),
	)

	addNode := commands.NewAddNodeHandler(graph, metrics, logger)
	connectNodes := commands.NewConnectNodesHandler(graph, metrics, logger)
	removeNode := commands.NewRemoveNodeHandler(graph, metrics, logger)
	removeEdge := commands.NewRemoveEdgeHandler(graph, logger)
	saveConfig := commands.NewSaveNodeConfigHandler(uploads, logger)
	startRun := commands.NewStartRunHandler(orchestrator, logger)
	cancelRun := commands.NewCancelRunHandler(orchestrator, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.AddNodeCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.AddNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return addNode.Handle(ctx, c)
		})},
		{commands.ConnectNodesCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.ConnectNodesCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return connectNodes.Handle(ctx, c)
		})},
		{commands.RemoveNodeCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.RemoveNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return removeNode.Handle(ctx, c)
		})},
		{commands.RemoveEdgeCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.RemoveEdgeCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return removeEdge.Handle(ctx, c)
		})},
		{commands.SaveNodeConfigCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.SaveNodeConfigCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return saveConfig.Handle(ctx, c)
		})},
		{commands.StartRunCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.StartRunCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return startRun.Handle(ctx, c)
		})},
		{commands.CancelRunCommand{}, bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.CancelRunCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return cancelRun.Handle(ctx, c)
		})},
	}

	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, pipeline.Execute(reg.handler)); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	graph *workflow.Graph,
	cat *catalog.Catalog,
	orchestrator *run.Orchestrator,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	getWorkflow := queries.NewGetWorkflowHandler(graph)
	getCatalog := queries.NewGetCatalogHandler(cat)
	getRunStatus := queries.NewGetRunStatusHandler(orchestrator)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetWorkflowQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetWorkflowQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getWorkflow.Handle(ctx, q)
		})},
		{queries.GetCatalogQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetCatalogQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getCatalog.Handle(ctx, q)
		})},
		{queries.GetRunStatusQuery{}, querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetRunStatusQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getRunStatus.Handle(ctx, q)
		})},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}
