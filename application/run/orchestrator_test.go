package run

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowboard/domain/catalog"
	"flowboard/domain/job"
	"flowboard/domain/workflow"
	pkgerrors "flowboard/pkg/errors"
	"flowboard/pkg/observability"
)

type pollResponse struct {
	record job.Record
	err    error
}

// fakeBackend scripts poll responses; once the script is exhausted the
// last response repeats
type fakeBackend struct {
	mu        sync.Mutex
	submitErr error
	lastReq   job.Request
	submits   int
	polls     int
	responses []pollResponse
}

func (f *fakeBackend) Upload(ctx context.Context, filename string, r io.Reader) (job.UploadedFileRef, error) {
	return job.UploadedFileRef{}, nil
}

func (f *fakeBackend) Submit(ctx context.Context, req job.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	f.lastReq = req
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "job-1", nil
}

func (f *fakeBackend) JobStatus(ctx context.Context, jobID string) (job.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.polls
	f.polls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	return resp.record, resp.err
}

func (f *fakeBackend) Download(ctx context.Context, jobID string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("not implemented")
}

func (f *fakeBackend) FileInfo(ctx context.Context, fileID string) (job.UploadedFileRef, error) {
	return job.UploadedFileRef{}, nil
}

func (f *fakeBackend) Health(ctx context.Context) error {
	return nil
}

func (f *fakeBackend) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

func (f *fakeBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func (f *fakeBackend) capturedRequest() job.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func processing() pollResponse {
	return pollResponse{record: job.Record{JobID: "job-1", Status: job.StatusProcessing}}
}

func completed() pollResponse {
	return pollResponse{record: job.Record{JobID: "job-1", Status: job.StatusCompleted, ProcessedCount: 3, TotalCount: 3}}
}

func newTestOrchestrator(backend *fakeBackend, jobTimeout time.Duration) (*Orchestrator, *workflow.Graph) {
	graph := workflow.NewDefaultGraph(catalog.NewCatalog())
	o := NewOrchestrator(
		graph,
		backend,
		observability.NewCollector("flowboard"),
		zap.NewNop(),
		10*time.Millisecond,
		jobTimeout,
	)
	return o, graph
}

func configureRun(o *Orchestrator, graph *workflow.Graph) {
	graph.SetNodeConfig("2", workflow.Config{
		"task":       "attribute_extraction",
		"batch_size": 5,
		"start_row":  0,
		"end_row":    2,
	})
	o.SetUploadedFile(job.UploadedFileRef{FileID: "file-1", Filename: "data.csv", RowCount: 10})
}

func TestOrchestrator_Start_NoUploadedFile(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	graph.SetNodeConfig("2", workflow.Config{"task": "data_qa"})

	err := o.Start(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPrecondition(err))
	assert.Zero(t, backend.submitCount())
	assert.Equal(t, StateIdle, o.Status().State)
}

func TestOrchestrator_Start_UnconfiguredProcessor(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, _ := newTestOrchestrator(backend, time.Second)
	o.SetUploadedFile(job.UploadedFileRef{FileID: "file-1", RowCount: 10})

	err := o.Start(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPrecondition(err))
	assert.Zero(t, backend.submitCount())
}

func TestOrchestrator_Start_NoProcessorNode(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	o.SetUploadedFile(job.UploadedFileRef{FileID: "file-1", RowCount: 10})
	require.NoError(t, graph.RemoveNode("2"))

	err := o.Start(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPrecondition(err))
	assert.Zero(t, backend.submitCount())
}

func TestOrchestrator_Start_InvalidConfiguration(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	graph.SetNodeConfig("2", workflow.Config{"batch_size": 500})
	o.SetUploadedFile(job.UploadedFileRef{FileID: "file-1", RowCount: 10})

	err := o.Start(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPrecondition(err))
	assert.Zero(t, backend.submitCount())
}

func TestOrchestrator_Run_CompletesAndPropagates(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{
		processing(),
		processing(),
		completed(),
	}}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))

	// Submit acceptance marks the processor running before any poll
	proc, _ := graph.Node("2")
	assert.Equal(t, workflow.StatusRunning, proc.Status)

	require.Eventually(t, func() bool {
		return o.Status().State == StateCompleted
	}, time.Second, 5*time.Millisecond)

	proc, _ = graph.Node("2")
	sink, _ := graph.Node("3")
	assert.Equal(t, workflow.StatusCompleted, proc.Status)
	assert.Equal(t, workflow.StatusCompleted, sink.Status)

	// The source node is never touched by propagation
	src, _ := graph.Node("1")
	assert.Equal(t, workflow.StatusIdle, src.Status)

	snap := o.Status()
	assert.Equal(t, "job-1", snap.JobID)
	require.NotNil(t, snap.Record)
	assert.Equal(t, 3, snap.Record.ProcessedCount)

	// Polling stops at the terminal status
	stopped := backend.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, backend.pollCount())
}

func TestOrchestrator_Run_SubmitRejection(t *testing.T) {
	backend := &fakeBackend{
		submitErr: pkgerrors.NewRemoteRejectionError("file not found"),
		responses: []pollResponse{completed()},
	}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	err := o.Start(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsRemoteRejection(err))
	assert.Equal(t, StateFailed, o.Status().State)

	proc, _ := graph.Node("2")
	assert.Equal(t, workflow.StatusError, proc.Status)
	assert.Zero(t, backend.pollCount())
}

func TestOrchestrator_Run_RemoteFailure(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{
		processing(),
		{record: job.Record{JobID: "job-1", Status: job.StatusFailed, ErrorMessage: "row 7 broke"}},
	}}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))

	require.Eventually(t, func() bool {
		return o.Status().State == StateFailed
	}, time.Second, 5*time.Millisecond)

	proc, _ := graph.Node("2")
	assert.Equal(t, workflow.StatusError, proc.Status)

	snap := o.Status()
	require.NotNil(t, snap.Record)
	assert.Equal(t, "row 7 broke", snap.Record.ErrorMessage)
}

func TestOrchestrator_Run_TransientPollErrorsAreRetried(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{
		{err: pkgerrors.NewTransportError("poll", errors.New("connection refused"))},
		{err: pkgerrors.NewTransportError("poll", errors.New("connection refused"))},
		completed(),
	}}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))

	require.Eventually(t, func() bool {
		return o.Status().State == StateCompleted
	}, time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, backend.pollCount(), 3)
}

func TestOrchestrator_Run_TimesOut(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{processing()}}
	o, graph := newTestOrchestrator(backend, 60*time.Millisecond)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))

	require.Eventually(t, func() bool {
		return o.Status().State == StateTimedOut
	}, time.Second, 5*time.Millisecond)

	proc, _ := graph.Node("2")
	assert.Equal(t, workflow.StatusTimedOut, proc.Status)

	stopped := backend.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, backend.pollCount(), stopped+1)
}

func TestOrchestrator_Start_RejectsConcurrentRun(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{processing()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))

	err := o.Start(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 1, backend.submitCount())

	require.NoError(t, o.Cancel())
}

func TestOrchestrator_Cancel_StopsPollingAndReturnsToIdle(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{processing()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))
	require.NoError(t, o.Cancel())

	assert.Equal(t, StateIdle, o.Status().State)

	// Node statuses are left as they were at cancel time
	proc, _ := graph.Node("2")
	assert.Equal(t, workflow.StatusRunning, proc.Status)

	stopped := backend.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, backend.pollCount(), stopped+1)
}

func TestOrchestrator_Cancel_WithoutActiveRun(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, _ := newTestOrchestrator(backend, time.Second)

	err := o.Cancel()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestOrchestrator_Run_RestartAfterTerminalState(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	configureRun(o, graph)

	require.NoError(t, o.Start(context.Background()))
	require.Eventually(t, func() bool {
		return o.Status().State == StateCompleted
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, 2, backend.submitCount())
}

func TestOrchestrator_BuildRequest_AppliesDefaults(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, graph := newTestOrchestrator(backend, time.Second)
	graph.SetNodeConfig("2", workflow.Config{"task": "sales_faq"})
	o.SetUploadedFile(job.UploadedFileRef{FileID: "file-1", RowCount: 42})

	require.NoError(t, o.Start(context.Background()))

	req := backend.capturedRequest()
	assert.Equal(t, "file-1", req.FileID)
	assert.Equal(t, "sales_faq", req.Task)
	assert.Equal(t, "batch", req.Mode)
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	assert.Equal(t, 10, req.BatchSize)
	assert.Equal(t, job.RowRange{Start: 0, End: 42}, req.RowRange)

	require.Eventually(t, func() bool {
		return o.Status().State.Terminal()
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_BuildRequest_ReadsNodeConfig(t *testing.T) {
	backend := &fakeBackend{responses: []pollResponse{completed()}}
	o, graph := newTestOrchestrator(backend, time.Second)

	// Numbers arrive as float64 when the config came in over JSON
	graph.SetNodeConfig("2", workflow.Config{
		"task":       "category_classification",
		"llm_model":  "gpt-4o",
		"batch_size": float64(25),
		"start_row":  float64(5),
		"end_row":    float64(30),
	})
	o.SetUploadedFile(job.UploadedFileRef{FileID: "file-9", RowCount: 100})

	require.NoError(t, o.Start(context.Background()))

	req := backend.capturedRequest()
	assert.Equal(t, "category_classification", req.Task)
	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, 25, req.BatchSize)
	assert.Equal(t, job.RowRange{Start: 5, End: 30}, req.RowRange)

	require.Eventually(t, func() bool {
		return o.Status().State.Terminal()
	}, time.Second, 5*time.Millisecond)
}

// blockingBackend holds the first submit open until released so a
// cancel can land while the submit call is still in flight
type blockingBackend struct {
	fakeBackend
	release  chan struct{}
	oldPolls int
}

func (b *blockingBackend) Submit(ctx context.Context, req job.Request) (string, error) {
	b.mu.Lock()
	b.submits++
	first := b.submits == 1
	b.mu.Unlock()

	if first {
		<-b.release
		return "job-old", nil
	}
	return "job-new", nil
}

func (b *blockingBackend) JobStatus(ctx context.Context, jobID string) (job.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polls++
	if jobID == "job-old" {
		b.oldPolls++
		return job.Record{JobID: "job-old", Status: job.StatusFailed, ErrorMessage: "stale job"}, nil
	}
	return job.Record{JobID: "job-new", Status: job.StatusCompleted, ProcessedCount: 3, TotalCount: 3}, nil
}

func (b *blockingBackend) oldPollCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.oldPolls
}

func TestOrchestrator_CancelDuringSubmit_DoesNotLeakPoller(t *testing.T) {
	backend := &blockingBackend{release: make(chan struct{})}
	graph := workflow.NewDefaultGraph(catalog.NewCatalog())
	o := NewOrchestrator(
		graph,
		backend,
		observability.NewCollector("flowboard"),
		zap.NewNop(),
		10*time.Millisecond,
		time.Second,
	)
	configureRun(o, graph)

	errCh := make(chan error, 1)
	go func() { errCh <- o.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return o.Status().State == StateSubmitting
	}, time.Second, time.Millisecond)

	require.NoError(t, o.Cancel())
	assert.Equal(t, StateIdle, o.Status().State)

	// The blocked submit now returns; its run was superseded by the
	// cancel and must not start a poller
	close(backend.release)
	err := <-errCh
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, StateIdle, o.Status().State)

	// A fresh run must not see the cancelled run's job
	require.NoError(t, o.Start(context.Background()))

	require.Eventually(t, func() bool {
		return o.Status().State == StateCompleted
	}, time.Second, 5*time.Millisecond)

	snap := o.Status()
	assert.Equal(t, "job-new", snap.JobID)
	require.NotNil(t, snap.Record)
	assert.Equal(t, "job-new", snap.Record.JobID)
	assert.Empty(t, snap.Record.ErrorMessage)

	proc, _ := graph.Node("2")
	assert.Equal(t, workflow.StatusCompleted, proc.Status)

	// The abandoned job was never polled
	assert.Zero(t, backend.oldPollCount())
}
