package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowboard/domain/workflow"
	"flowboard/pkg/observability"
)

// AddNodeCommand places a new node on the canvas. The caller supplies
// either an explicit position or the drop pointer plus the canvas
// origin; in the latter case the position is derived so the node lands
// centered under the pointer.
type AddNodeCommand struct {
	Type     string             `json:"type"`
	Position *workflow.Position `json:"position,omitempty"`
	Pointer  *workflow.Point    `json:"pointer,omitempty"`
	Origin   *workflow.Point    `json:"origin,omitempty"`

	// Created is filled by the handler with the resulting node
	Created *workflow.NodeView `json:"-"`
}

// Validate checks the command fields
func (c AddNodeCommand) Validate() error {
	if c.Type == "" {
		return errors.New("node type is required")
	}
	if c.Position == nil && c.Pointer == nil {
		return errors.New("either a position or a drop pointer is required")
	}
	return nil
}

// AddNodeHandler handles the AddNodeCommand
type AddNodeHandler struct {
	graph   *workflow.Graph
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewAddNodeHandler creates a new handler instance
func NewAddNodeHandler(
	graph *workflow.Graph,
	metrics *observability.Collector,
	logger *zap.Logger,
) *AddNodeHandler {
	return &AddNodeHandler{
		graph:   graph,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle executes the add node command
func (h *AddNodeHandler) Handle(ctx context.Context, cmd AddNodeCommand) error {
	var pos workflow.Position
	if cmd.Position != nil {
		pos = *cmd.Position
	} else {
		derived, err := workflow.ComputePosition(*cmd.Pointer, cmd.Origin)
		if err != nil {
			return err
		}
		pos = derived
	}

	node := h.graph.AddNode(cmd.Type, pos)
	h.metrics.NodesCreated.Inc()

	if cmd.Created != nil {
		*cmd.Created = node
	}

	h.logger.Info("Node added",
		zap.String("nodeID", node.ID),
		zap.String("type", node.Type),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)

	return nil
}
