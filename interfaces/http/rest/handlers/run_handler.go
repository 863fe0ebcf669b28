package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
	"flowboard/application/ports"
	"flowboard/application/queries"
	querybus "flowboard/application/queries/bus"
	"flowboard/pkg/common"
	pkgerrors "flowboard/pkg/errors"
)

// RunHandler handles run lifecycle HTTP requests
type RunHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	backend    ports.ProcessingBackend
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	backend ports.ProcessingBackend,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *RunHandler {
	return &RunHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		backend:    backend,
		errors:     errorHandler,
		logger:     logger,
	}
}

// StartRun handles POST /runs
func (h *RunHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.StartRunCommand{}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	status, err := h.queryBus.Ask(r.Context(), queries.GetRunStatusQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusAccepted, status)
}

// GetRunStatus handles GET /runs/current
func (h *RunHandler) GetRunStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.queryBus.Ask(r.Context(), queries.GetRunStatusQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, status)
}

// CancelRun handles POST /runs/current/cancel
func (h *RunHandler) CancelRun(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.CancelRunCommand{}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	status, err := h.queryBus.Ask(r.Context(), queries.GetRunStatusQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, status)
}

// GetFileInfo handles GET /files/{fileID} by proxying the backend's
// record of an uploaded file
func (h *RunHandler) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "File ID is required")
		return
	}

	ref, err := h.backend.FileInfo(r.Context(), fileID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ref)
}

// DownloadResults handles GET /runs/{jobID}/download by streaming the
// result file from the processing backend
func (h *RunHandler) DownloadResults(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Job ID is required")
		return
	}

	body, filename, err := h.backend.Download(r.Context(), jobID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("Result download interrupted",
			zap.String("jobID", jobID),
			zap.Error(err),
		)
	}
}
