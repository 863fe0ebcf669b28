package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowboard/domain/workflow"
)

// RemoveEdgeCommand deletes a single edge
type RemoveEdgeCommand struct {
	EdgeID string `json:"edge_id"`
}

// Validate checks the command fields
func (c RemoveEdgeCommand) Validate() error {
	if c.EdgeID == "" {
		return errors.New("edge ID is required")
	}
	return nil
}

// RemoveEdgeHandler handles the RemoveEdgeCommand
type RemoveEdgeHandler struct {
	graph  *workflow.Graph
	logger *zap.Logger
}

// NewRemoveEdgeHandler creates a new handler instance
func NewRemoveEdgeHandler(graph *workflow.Graph, logger *zap.Logger) *RemoveEdgeHandler {
	return &RemoveEdgeHandler{
		graph:  graph,
		logger: logger,
	}
}

// Handle executes the remove edge command
func (h *RemoveEdgeHandler) Handle(ctx context.Context, cmd RemoveEdgeCommand) error {
	if err := h.graph.RemoveEdge(cmd.EdgeID); err != nil {
		return err
	}

	h.logger.Info("Edge removed", zap.String("edgeID", cmd.EdgeID))
	return nil
}
