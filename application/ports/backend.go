package ports

import (
	"context"
	"io"

	"flowboard/domain/job"
)

// ProcessingBackend is the port to the remote processing service.
// This is the core's only I/O boundary; the HTTP implementation lives
// in infrastructure.
type ProcessingBackend interface {
	// Upload sends a file to the backend and returns its reference
	Upload(ctx context.Context, filename string, r io.Reader) (job.UploadedFileRef, error)

	// Submit starts a processing job and returns the job id
	Submit(ctx context.Context, req job.Request) (string, error)

	// JobStatus fetches the current state of a job
	JobStatus(ctx context.Context, jobID string) (job.Record, error)

	// Download streams the result file of a completed job. The returned
	// string is the suggested filename; the caller owns the ReadCloser.
	Download(ctx context.Context, jobID string) (io.ReadCloser, string, error)

	// FileInfo returns the backend's record of an uploaded file
	FileInfo(ctx context.Context, fileID string) (job.UploadedFileRef, error)

	// Health checks backend reachability
	Health(ctx context.Context) error
}
