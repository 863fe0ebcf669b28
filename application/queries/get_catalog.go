package queries

import (
	"context"

	"flowboard/domain/catalog"
)

// GetCatalogQuery fetches the node palette and the processor option sets
type GetCatalogQuery struct{}

// Validate checks the query fields
func (q GetCatalogQuery) Validate() error {
	return nil
}

// CatalogView is the palette returned to clients
type CatalogView struct {
	Agents []catalog.Descriptor `json:"agents"`
	Tasks  []catalog.Option     `json:"tasks"`
	Modes  []catalog.Option     `json:"modes"`
	Models []catalog.Option     `json:"models"`
}

// GetCatalogHandler handles the GetCatalogQuery
type GetCatalogHandler struct {
	catalog *catalog.Catalog
}

// NewGetCatalogHandler creates a new handler instance
func NewGetCatalogHandler(cat *catalog.Catalog) *GetCatalogHandler {
	return &GetCatalogHandler{catalog: cat}
}

// Handle executes the get catalog query
func (h *GetCatalogHandler) Handle(ctx context.Context, query GetCatalogQuery) (CatalogView, error) {
	return CatalogView{
		Agents: h.catalog.Descriptors(),
		Tasks:  catalog.TaskOptions(),
		Modes:  catalog.ModeOptions(),
		Models: catalog.ModelOptions(),
	}, nil
}
