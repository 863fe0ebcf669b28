package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowboard/domain/workflow"
	"flowboard/pkg/observability"
)

// ConnectNodesCommand creates a directed edge between two existing nodes
type ConnectNodesCommand struct {
	SourceID string `json:"source"`
	TargetID string `json:"target"`

	// Created is filled by the handler with the resulting edge
	Created *workflow.Edge `json:"-"`
}

// Validate checks the command fields
func (c ConnectNodesCommand) Validate() error {
	if c.SourceID == "" {
		return errors.New("source node ID is required")
	}
	if c.TargetID == "" {
		return errors.New("target node ID is required")
	}
	return nil
}

// ConnectNodesHandler handles the ConnectNodesCommand
type ConnectNodesHandler struct {
	graph   *workflow.Graph
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewConnectNodesHandler creates a new handler instance
func NewConnectNodesHandler(
	graph *workflow.Graph,
	metrics *observability.Collector,
	logger *zap.Logger,
) *ConnectNodesHandler {
	return &ConnectNodesHandler{
		graph:   graph,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes the connect nodes command
func (h *ConnectNodesHandler) Handle(ctx context.Context, cmd ConnectNodesCommand) error {
	edge, err := h.graph.Connect(cmd.SourceID, cmd.TargetID)
	if err != nil {
		return err
	}

	h.metrics.EdgesCreated.Inc()

	if cmd.Created != nil {
		*cmd.Created = edge
	}

	h.logger.Info("Edge created",
		zap.String("edgeID", edge.ID),
		zap.String("source", edge.SourceID),
		zap.String("target", edge.TargetID),
	)

	return nil
}
