package queries

import (
	"context"

	"flowboard/domain/workflow"
)

// GetWorkflowQuery fetches the full canvas state
type GetWorkflowQuery struct{}

// Validate checks the query fields
func (q GetWorkflowQuery) Validate() error {
	return nil
}

// WorkflowView is the canvas state returned to clients. Both slices are
// in insertion order and never nil.
type WorkflowView struct {
	Nodes []workflow.NodeView `json:"nodes"`
	Edges []workflow.Edge     `json:"edges"`
}

// GetWorkflowHandler handles the GetWorkflowQuery
type GetWorkflowHandler struct {
	graph *workflow.Graph
}

// NewGetWorkflowHandler creates a new handler instance
func NewGetWorkflowHandler(graph *workflow.Graph) *GetWorkflowHandler {
	return &GetWorkflowHandler{graph: graph}
}

// Handle executes the get workflow query
func (h *GetWorkflowHandler) Handle(ctx context.Context, query GetWorkflowQuery) (WorkflowView, error) {
	return WorkflowView{
		Nodes: h.graph.Nodes(),
		Edges: h.graph.Edges(),
	}, nil
}
