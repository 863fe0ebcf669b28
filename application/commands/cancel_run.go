package commands

import (
	"context"

	"go.uber.org/zap"

	"flowboard/application/run"
)

// CancelRunCommand stops the active run and its poll task
type CancelRunCommand struct{}

// Validate checks the command fields
func (c CancelRunCommand) Validate() error {
	return nil
}

// CancelRunHandler handles the CancelRunCommand
type CancelRunHandler struct {
	orchestrator *run.Orchestrator
	logger       *zap.Logger
}

// NewCancelRunHandler creates a new handler instance
func NewCancelRunHandler(orchestrator *run.Orchestrator, logger *zap.Logger) *CancelRunHandler {
	return &CancelRunHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Handle executes the cancel run command
func (h *CancelRunHandler) Handle(ctx context.Context, cmd CancelRunCommand) error {
	return h.orchestrator.Cancel()
}
