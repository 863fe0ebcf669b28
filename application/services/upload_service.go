package services

import (
	"context"
	"io"

	"go.uber.org/zap"

	"flowboard/application/ports"
	"flowboard/application/run"
	"flowboard/domain/catalog"
	"flowboard/domain/workflow"
	pkgerrors "flowboard/pkg/errors"
)

// FileUpload is the raw file payload attached to a configuration save
type FileUpload struct {
	Filename string
	Data     io.Reader
}

// UploadService saves node configuration and, for source nodes, pushes
// the attached file to the processing backend in the same operation.
// The returned file reference is handed to the orchestrator so a later
// run can use it without re-reading the node.
type UploadService struct {
	graph        *workflow.Graph
	backend      ports.ProcessingBackend
	orchestrator *run.Orchestrator
	logger       *zap.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(
	graph *workflow.Graph,
	backend ports.ProcessingBackend,
	orchestrator *run.Orchestrator,
	logger *zap.Logger,
) *UploadService {
	return &UploadService{
		graph:        graph,
		backend:      backend,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// SaveNodeConfig replaces the node's configuration wholesale. When the
// node is a CSV source and a file payload is attached, the file is
// uploaded first; an upload failure leaves the node's configuration
// untouched.
func (s *UploadService) SaveNodeConfig(
	ctx context.Context,
	nodeID string,
	cfg workflow.Config,
	upload *FileUpload,
) (workflow.NodeView, error) {
	node, ok := s.graph.Node(nodeID)
	if !ok {
		return workflow.NodeView{}, pkgerrors.NewNotFoundError("node " + nodeID)
	}

	cfg = cfg.Copy()

	if node.Type == catalog.TypeCSVUpload && upload != nil {
		ref, err := s.backend.Upload(ctx, upload.Filename, upload.Data)
		if err != nil {
			s.logger.Error("File upload failed",
				zap.String("nodeID", nodeID),
				zap.String("filename", upload.Filename),
				zap.Error(err),
			)
			return workflow.NodeView{}, err
		}

		s.orchestrator.SetUploadedFile(ref)

		// Reflect the upload result in the node's configuration so the
		// workflow view shows what was uploaded
		cfg["file_id"] = ref.FileID
		cfg["filename"] = ref.Filename
		cfg["row_count"] = ref.RowCount
		cfg["columns"] = ref.Columns

		s.logger.Info("File uploaded",
			zap.String("nodeID", nodeID),
			zap.String("fileID", ref.FileID),
			zap.String("filename", ref.Filename),
			zap.Int("rowCount", ref.RowCount),
		)
	}

	s.graph.SetNodeConfig(nodeID, cfg)

	saved, _ := s.graph.Node(nodeID)
	return saved, nil
}
