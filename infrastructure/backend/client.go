package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"flowboard/domain/job"
	pkgerrors "flowboard/pkg/errors"
)

// detailResponse is the backend's error body for non-success responses
type detailResponse struct {
	Detail string `json:"detail"`
}

// HTTPClient talks to the remote processing backend over its HTTP
// contract. Upload, submit and download go through a circuit breaker;
// status polls deliberately do not, because the orchestrator treats
// poll failures as transient and must keep retrying.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewHTTPClient creates a backend client for the given base URL
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "processing-backend",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Remote rejections are the backend answering; only transport
			// failures count against the breaker
			return err == nil || !pkgerrors.IsTransport(err)
		},
	})

	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: cb,
		logger:  logger,
	}
}

// Upload sends a file as multipart form data to POST /upload
func (c *HTTPClient) Upload(ctx context.Context, filename string, r io.Reader) (job.UploadedFileRef, error) {
	var ref job.UploadedFileRef

	err := c.protected(func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return pkgerrors.NewInternalError("failed to build multipart body").WithCause(err)
		}
		if _, err := io.Copy(part, r); err != nil {
			return pkgerrors.NewInternalError("failed to read upload payload").WithCause(err)
		}
		if err := writer.Close(); err != nil {
			return pkgerrors.NewInternalError("failed to finalize multipart body").WithCause(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
		if err != nil {
			return pkgerrors.NewInternalError("failed to build upload request").WithCause(err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.client.Do(req)
		if err != nil {
			return pkgerrors.NewTransportError("upload", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.rejection(resp, "upload failed")
		}

		if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
			return pkgerrors.NewTransportError("upload", err)
		}
		return nil
	})
	if err != nil {
		return job.UploadedFileRef{}, err
	}

	c.logger.Info("File uploaded",
		zap.String("fileID", ref.FileID),
		zap.String("filename", ref.Filename),
		zap.Int("rowCount", ref.RowCount),
	)
	return ref, nil
}

// Submit starts a processing job via POST /process
func (c *HTTPClient) Submit(ctx context.Context, request job.Request) (string, error) {
	var jobID string

	err := c.protected(func() error {
		payload, err := json.Marshal(request)
		if err != nil {
			return pkgerrors.NewInternalError("failed to encode job request").WithCause(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(payload))
		if err != nil {
			return pkgerrors.NewInternalError("failed to build submit request").WithCause(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return pkgerrors.NewTransportError("submit", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.rejection(resp, "job submission rejected")
		}

		var record job.Record
		if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
			return pkgerrors.NewTransportError("submit", err)
		}
		jobID = record.JobID
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("Job submitted", zap.String("jobID", jobID))
	return jobID, nil
}

// JobStatus fetches the current job state via GET /jobs/{id}
func (c *HTTPClient) JobStatus(ctx context.Context, jobID string) (job.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return job.Record{}, pkgerrors.NewInternalError("failed to build status request").WithCause(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return job.Record{}, pkgerrors.NewTransportError("poll", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Treated as transient by the orchestrator, same as a network
		// failure: the next tick retries
		return job.Record{}, pkgerrors.NewTransportError("poll",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var record job.Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return job.Record{}, pkgerrors.NewTransportError("poll", err)
	}
	if record.JobID == "" {
		record.JobID = jobID
	}
	return record, nil
}

// Download streams the result file via GET /download/{id}
func (c *HTTPClient) Download(ctx context.Context, jobID string) (io.ReadCloser, string, error) {
	var body io.ReadCloser

	err := c.protected(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download/"+jobID, nil)
		if err != nil {
			return pkgerrors.NewInternalError("failed to build download request").WithCause(err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return pkgerrors.NewTransportError("download", err)
		}

		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return c.rejection(resp, "download failed")
		}

		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return body, fmt.Sprintf("results_%s.csv", jobID), nil
}

// FileInfo returns the backend's record of an uploaded file via GET /files/{id}
func (c *HTTPClient) FileInfo(ctx context.Context, fileID string) (job.UploadedFileRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+fileID, nil)
	if err != nil {
		return job.UploadedFileRef{}, pkgerrors.NewInternalError("failed to build file info request").WithCause(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return job.UploadedFileRef{}, pkgerrors.NewTransportError("file info", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return job.UploadedFileRef{}, c.rejection(resp, "file lookup failed")
	}

	var ref job.UploadedFileRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return job.UploadedFileRef{}, pkgerrors.NewTransportError("file info", err)
	}
	return ref, nil
}

// Health checks backend reachability via GET /health
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return pkgerrors.NewInternalError("failed to build health request").WithCause(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return pkgerrors.NewTransportError("health", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.NewTransportError("health",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}

// protected runs fn through the circuit breaker
func (c *HTTPClient) protected(fn func() error) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return pkgerrors.NewTransportError("backend", err)
	}
	return err
}

// rejection maps a non-success response to a remote rejection carrying
// the backend's detail message verbatim
func (c *HTTPClient) rejection(resp *http.Response, fallback string) error {
	var detail detailResponse
	if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
		return pkgerrors.NewRemoteRejectionError(detail.Detail)
	}
	return pkgerrors.NewRemoteRejectionError(
		fmt.Sprintf("%s (status %d)", fallback, resp.StatusCode))
}
