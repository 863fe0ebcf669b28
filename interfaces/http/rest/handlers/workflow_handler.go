package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowboard/application/commands"
	"flowboard/application/commands/bus"
	"flowboard/application/queries"
	querybus "flowboard/application/queries/bus"
	"flowboard/application/services"
	"flowboard/domain/workflow"
	"flowboard/pkg/common"
	pkgerrors "flowboard/pkg/errors"
)

// WorkflowHandler handles canvas-related HTTP requests
type WorkflowHandler struct {
	commandBus  *bus.CommandBus
	queryBus    *querybus.QueryBus
	errors      *pkgerrors.ErrorHandler
	logger      *zap.Logger
	uploadLimit int64
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
	uploadLimit int64,
) *WorkflowHandler {
	return &WorkflowHandler{
		commandBus:  commandBus,
		queryBus:    queryBus,
		errors:      errorHandler,
		logger:      logger,
		uploadLimit: uploadLimit,
	}
}

// AddNodeRequest represents the request body for placing a node
type AddNodeRequest struct {
	Type     string             `json:"type"`
	Position *workflow.Position `json:"position,omitempty"`
	Pointer  *workflow.Point    `json:"pointer,omitempty"`
	Origin   *workflow.Point    `json:"origin,omitempty"`
}

// ConnectRequest represents the request body for creating an edge
type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GetWorkflow handles GET /workflow
func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetWorkflowQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// AddNode handles POST /workflow/nodes
func (h *WorkflowHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := common.ParseJSONBody(r, &req, h.uploadLimit); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var created workflow.NodeView
	cmd := commands.AddNodeCommand{
		Type:     req.Type,
		Position: req.Position,
		Pointer:  req.Pointer,
		Origin:   req.Origin,
		Created:  &created,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, created)
}

// DeleteNode handles DELETE /workflow/nodes/{nodeID}
func (h *WorkflowHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	cmd := commands.RemoveNodeCommand{NodeID: nodeID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateEdge handles POST /workflow/edges
func (h *WorkflowHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := common.ParseJSONBody(r, &req, h.uploadLimit); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var created workflow.Edge
	cmd := commands.ConnectNodesCommand{
		SourceID: req.Source,
		TargetID: req.Target,
		Created:  &created,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, created)
}

// DeleteEdge handles DELETE /workflow/edges/{edgeID}
func (h *WorkflowHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")

	cmd := commands.RemoveEdgeCommand{EdgeID: edgeID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SaveNodeConfig handles PUT /workflow/nodes/{nodeID}/config. The body
// is either a JSON configuration object, or multipart form data with a
// "config" JSON part and an optional "file" part for source nodes.
func (h *WorkflowHandler) SaveNodeConfig(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")

	var cfg workflow.Config
	var upload *services.FileUpload

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
			h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid multipart body: "+err.Error())
			return
		}

		if raw := r.FormValue("config"); raw != "" {
			if err := common.DecodeJSONString(raw, &cfg); err != nil {
				h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid config part: "+err.Error())
				return
			}
		} else {
			cfg = workflow.Config{}
		}

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			upload = &services.FileUpload{
				Filename: header.Filename,
				Data:     file,
			}
		}
	} else {
		if err := common.ParseJSONBody(r, &cfg, h.uploadLimit); err != nil {
			h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	var saved workflow.NodeView
	cmd := commands.SaveNodeConfigCommand{
		NodeID: nodeID,
		Config: cfg,
		Upload: upload,
		Saved:  &saved,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.respondCommandError(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, saved)
}

// respondCommandError translates bus errors into HTTP responses.
// Validation failures from the bus arrive as plain errors; everything
// else carries its own status.
func (h *WorkflowHandler) respondCommandError(w http.ResponseWriter, r *http.Request, err error) {
	if pkgerrors.IsAppError(err) {
		h.errors.Handle(w, r, err)
		return
	}
	if strings.Contains(err.Error(), "validation failed") {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.errors.Handle(w, r, err)
}
