package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"flowboard/application/services"
	"flowboard/domain/workflow"
)

// SaveNodeConfigCommand replaces a node's configuration. A file payload
// may accompany the save for source nodes; it is uploaded before the
// configuration is stored.
type SaveNodeConfigCommand struct {
	NodeID string          `json:"node_id"`
	Config workflow.Config `json:"config"`

	Upload *services.FileUpload `json:"-"`

	// Saved is filled by the handler with the node after the save
	Saved *workflow.NodeView `json:"-"`
}

// Validate checks the command fields
func (c SaveNodeConfigCommand) Validate() error {
	if c.NodeID == "" {
		return errors.New("node ID is required")
	}
	if c.Config == nil {
		return errors.New("configuration is required")
	}
	return nil
}

// SaveNodeConfigHandler handles the SaveNodeConfigCommand
type SaveNodeConfigHandler struct {
	uploads *services.UploadService
	logger  *zap.Logger
}

// NewSaveNodeConfigHandler creates a new handler instance
func NewSaveNodeConfigHandler(
	uploads *services.UploadService,
	logger *zap.Logger,
) *SaveNodeConfigHandler {
	return &SaveNodeConfigHandler{
		uploads: uploads,
		logger:  logger,
	}
}

// Handle executes the save node config command
func (h *SaveNodeConfigHandler) Handle(ctx context.Context, cmd SaveNodeConfigCommand) error {
	saved, err := h.uploads.SaveNodeConfig(ctx, cmd.NodeID, cmd.Config, cmd.Upload)
	if err != nil {
		return err
	}

	if cmd.Saved != nil {
		*cmd.Saved = saved
	}

	h.logger.Info("Node configuration saved",
		zap.String("nodeID", cmd.NodeID),
		zap.Int("keys", len(cmd.Config)),
	)

	return nil
}
