package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"flowboard/application/queries"
	querybus "flowboard/application/queries/bus"
	"flowboard/pkg/common"
	pkgerrors "flowboard/pkg/errors"
)

// CatalogHandler serves the node palette and the processor option sets
type CatalogHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetCatalog handles GET /catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetCatalogQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
