package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowboard/domain/workflow"
	"flowboard/pkg/observability"
)

// RemoveNodeCommand deletes a node and every edge touching it
type RemoveNodeCommand struct {
	NodeID string `json:"node_id"`
}

// Validate checks the command fields
func (c RemoveNodeCommand) Validate() error {
	if c.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// RemoveNodeHandler handles the RemoveNodeCommand
type RemoveNodeHandler struct {
	graph   *workflow.Graph
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewRemoveNodeHandler creates a new handler instance
func NewRemoveNodeHandler(
	graph *workflow.Graph,
	metrics *observability.Collector,
	logger *zap.Logger,
) *RemoveNodeHandler {
	return &RemoveNodeHandler{
		graph:   graph,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes the remove node command
func (h *RemoveNodeHandler) Handle(ctx context.Context, cmd RemoveNodeCommand) error {
	if err := h.graph.RemoveNode(cmd.NodeID); err != nil {
		return err
	}

	h.metrics.NodesRemoved.Inc()
	h.logger.Info("Node removed", zap.String("nodeID", cmd.NodeID))
	return nil
}
