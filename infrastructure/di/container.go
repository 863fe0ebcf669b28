package di

import (
	"go.uber.org/zap"

	"flowboard/application/commands/bus"
	"flowboard/application/ports"
	querybus "flowboard/application/queries/bus"
	"flowboard/application/run"
	"flowboard/application/services"
	"flowboard/domain/catalog"
	"flowboard/domain/workflow"
	"flowboard/infrastructure/config"
	"flowboard/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Catalog      *catalog.Catalog
	Graph        *workflow.Graph
	Backend      ports.ProcessingBackend
	Orchestrator *run.Orchestrator
	Uploads      *services.UploadService
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Metrics      *observability.Collector
}
