package queries

import (
	"context"

	"flowboard/application/run"
)

// GetRunStatusQuery fetches the lifecycle state of the current run
type GetRunStatusQuery struct{}

// Validate checks the query fields
func (q GetRunStatusQuery) Validate() error {
	return nil
}

// GetRunStatusHandler handles the GetRunStatusQuery
type GetRunStatusHandler struct {
	orchestrator *run.Orchestrator
}

// NewGetRunStatusHandler creates a new handler instance
func NewGetRunStatusHandler(orchestrator *run.Orchestrator) *GetRunStatusHandler {
	return &GetRunStatusHandler{orchestrator: orchestrator}
}

// Handle executes the get run status query
func (h *GetRunStatusHandler) Handle(ctx context.Context, query GetRunStatusQuery) (run.Snapshot, error) {
	return h.orchestrator.Status(), nil
}
