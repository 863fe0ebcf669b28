package commands

import (
	"context"

	"go.uber.org/zap"

	"flowboard/application/run"
)

// StartRunCommand submits the configured workflow to the processing
// backend and starts the poll task
type StartRunCommand struct{}

// Validate checks the command fields
func (c StartRunCommand) Validate() error {
	return nil
}

// StartRunHandler handles the StartRunCommand
type StartRunHandler struct {
	orchestrator *run.Orchestrator
	logger       *zap.Logger
}

// NewStartRunHandler creates a new handler instance
func NewStartRunHandler(orchestrator *run.Orchestrator, logger *zap.Logger) *StartRunHandler {
	return &StartRunHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the start run command
func (h *StartRunHandler) Handle(ctx context.Context, cmd StartRunCommand) error {
	return h.orchestrator.Start(ctx)
}
