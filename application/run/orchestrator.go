package run

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"flowboard/application/ports"
	"flowboard/domain/catalog"
	"flowboard/domain/job"
	"flowboard/domain/workflow"
	pkgerrors "flowboard/pkg/errors"
	"flowboard/pkg/observability"
	"flowboard/pkg/utils"
)

// Defaults for the poll cadence and the overall run deadline
const (
	DefaultPollInterval = 2 * time.Second
	DefaultJobTimeout   = 5 * time.Minute
)

// Orchestrator drives the lifecycle of one remote processing run:
// submit, poll at a fixed cadence, and stop on a terminal status,
// timeout or cancel. At most one run is active at a time; starting a
// second run while one is in flight is rejected rather than leaving
// two pollers alive.
type Orchestrator struct {
	graph   *workflow.Graph
	backend ports.ProcessingBackend
	metrics *observability.Collector
	logger  *zap.Logger

	pollInterval time.Duration
	jobTimeout   time.Duration

	mu sync.Mutex

	// gen identifies the current run; events carrying a superseded
	// generation are discarded so a cancelled run's in-flight submit
	// or poll responses cannot touch a later run's state
	gen uint64

	state       State
	jobID       string
	record      job.Record
	processorID string
	sinkID      string
	fileRef     *job.UploadedFileRef
	cancelPoll  context.CancelFunc
	startedAt   time.Time
}

// Snapshot is a point-in-time view of the orchestrator for display
type Snapshot struct {
	State        State                `json:"state"`
	JobID        string               `json:"job_id,omitempty"`
	ProcessorID  string               `json:"processor_id,omitempty"`
	SinkID       string               `json:"sink_id,omitempty"`
	Record       *job.Record          `json:"record,omitempty"`
	UploadedFile *job.UploadedFileRef `json:"uploaded_file,omitempty"`
}

// NewOrchestrator creates an orchestrator bound to a workflow graph and
// a processing backend
func NewOrchestrator(
	graph *workflow.Graph,
	backend ports.ProcessingBackend,
	metrics *observability.Collector,
	logger *zap.Logger,
	pollInterval time.Duration,
	jobTimeout time.Duration,
) *Orchestrator {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}

	return &Orchestrator{
		graph:        graph,
		backend:      backend,
		metrics:      metrics,
		logger:       logger,
		pollInterval: pollInterval,
		jobTimeout:   jobTimeout,
		state:        StateIdle,
	}
}

// SetUploadedFile records the uploaded file reference a run will use
func (o *Orchestrator) SetUploadedFile(ref job.UploadedFileRef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fileRef = &ref
}

// UploadedFile returns the current uploaded file reference, if any
func (o *Orchestrator) UploadedFile() (job.UploadedFileRef, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fileRef == nil {
		return job.UploadedFileRef{}, false
	}
	return *o.fileRef, true
}

// Start submits a run and begins polling. Precondition failures (no
// uploaded file, no configured processor) are reported without any
// network call; a run already in flight is a conflict.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()

	if o.state.Active() {
		o.mu.Unlock()
		return pkgerrors.NewConflictError("a run is already in progress")
	}

	if o.fileRef == nil {
		o.mu.Unlock()
		return pkgerrors.NewPreconditionError("no file has been uploaded")
	}
	fileRef := *o.fileRef

	processor, ok := o.graph.FindFirstByType(catalog.TypeLLMProcessor)
	if !ok {
		o.mu.Unlock()
		return pkgerrors.NewPreconditionError("workflow has no processor node")
	}
	if !processor.Configured {
		o.mu.Unlock()
		return pkgerrors.NewPreconditionError("processor node is not configured")
	}

	request := buildRequest(processor.Config, fileRef)
	if err := utils.ValidateStruct(request); err != nil {
		o.mu.Unlock()
		return pkgerrors.NewPreconditionError("invalid processor configuration: " + err.Error())
	}

	// Bind the run to an explicit node reference captured now, instead
	// of re-scanning the graph on every status update
	o.processorID = processor.ID
	if sinkID, ok := o.graph.Downstream(processor.ID); ok {
		o.sinkID = sinkID
	} else {
		o.sinkID = ""
	}

	o.gen++
	gen := o.gen
	o.state, _ = reduce(o.state, SubmitRequested{})
	o.record = job.Record{}
	o.jobID = ""
	o.mu.Unlock()

	o.logger.Info("Submitting processing run",
		zap.String("processorID", processor.ID),
		zap.String("fileID", fileRef.FileID),
		zap.String("task", request.Task),
	)

	jobID, err := o.backend.Submit(ctx, request)
	if err != nil {
		o.apply(gen, SubmitRejected{Err: err})
		return err
	}

	o.metrics.RunsSubmitted.Inc()

	// The poll task carries its own deadline so it survives the
	// initiating request's context
	pollCtx, cancel := context.WithTimeout(context.Background(), o.jobTimeout)

	o.mu.Lock()
	if gen != o.gen || o.state != StateSubmitting {
		// Cancelled while the submit was in flight; the backend job
		// is abandoned and no poller starts
		o.mu.Unlock()
		cancel()
		return pkgerrors.NewConflictError("run was cancelled during submit")
	}
	o.cancelPoll = cancel
	o.startedAt = time.Now()
	o.mu.Unlock()

	if !o.apply(gen, SubmitAccepted{JobID: jobID}) {
		cancel()
		return pkgerrors.NewConflictError("run was cancelled during submit")
	}

	go o.pollLoop(pollCtx, jobID, gen)

	return nil
}

// Cancel stops an active run. Node statuses are left as they are; the
// orchestrator returns to idle and may be started again.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	if !o.state.Active() {
		o.mu.Unlock()
		return pkgerrors.NewConflictError("no run in progress")
	}
	cancel := o.cancelPoll
	gen := o.gen
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.apply(gen, CancelRequested{})

	o.logger.Info("Run cancelled", zap.String("jobID", o.Status().JobID))
	return nil
}

// Status returns a snapshot of the current lifecycle state
func (o *Orchestrator) Status() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		State:       o.state,
		JobID:       o.jobID,
		ProcessorID: o.processorID,
		SinkID:      o.sinkID,
	}
	if o.jobID != "" {
		record := o.record
		snap.Record = &record
	}
	if o.fileRef != nil {
		ref := *o.fileRef
		snap.UploadedFile = &ref
	}
	return snap
}

// pollLoop repeats the status check at the configured cadence until a
// terminal status arrives or the context ends. Transport errors are
// swallowed and retried at the next tick, with no backoff and no retry
// cap.
func (o *Orchestrator) pollLoop(ctx context.Context, jobID string, gen uint64) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				o.logger.Warn("Run timed out", zap.String("jobID", jobID))
				o.apply(gen, TimeoutFired{})
			}
			return

		case <-ticker.C:
			record, err := o.backend.JobStatus(ctx, jobID)
			if err != nil {
				o.metrics.Polls.WithLabelValues("error").Inc()
				o.logger.Debug("Poll failed, retrying at next tick",
					zap.String("jobID", jobID),
					zap.Error(err),
				)
				o.apply(gen, PollError{Err: err})
				continue
			}

			o.metrics.Polls.WithLabelValues(string(record.Status)).Inc()
			o.apply(gen, PollResult{Record: record})

			if record.Status.Terminal() {
				return
			}
		}
	}
}

// apply runs an event through the reducer and, when the transition is
// legal, projects the resulting status changes onto the graph. Events
// from a superseded generation are discarded. Returns whether the
// event was accepted.
func (o *Orchestrator) apply(gen uint64, ev Event) bool {
	o.mu.Lock()

	if gen != o.gen {
		o.mu.Unlock()
		return false
	}

	next, ok := reduce(o.state, ev)
	if !ok {
		o.mu.Unlock()
		return false
	}

	prev := o.state
	o.state = next

	switch e := ev.(type) {
	case SubmitAccepted:
		o.jobID = e.JobID
		o.record = job.Record{JobID: e.JobID, Status: job.StatusProcessing}
	case SubmitRejected:
		o.record.ErrorMessage = e.Err.Error()
	case PollResult:
		o.record = e.Record
	}

	changes := propagate(ev, o.processorID, o.sinkID)
	cancel := o.cancelPoll
	startedAt := o.startedAt
	o.mu.Unlock()

	for _, change := range changes {
		o.graph.SetNodeStatus(change.NodeID, change.Status)
	}

	if next.Terminal() && !prev.Terminal() {
		if cancel != nil {
			cancel()
		}
		if !startedAt.IsZero() {
			o.metrics.RunDuration.Observe(time.Since(startedAt).Seconds())
		}
		o.logger.Info("Run reached terminal state",
			zap.String("state", string(next)),
			zap.String("jobID", o.Status().JobID),
		)
	}

	return true
}

// buildRequest assembles the backend request from the processor node's
// configuration, falling back to the platform defaults for anything the
// user left unset
func buildRequest(cfg workflow.Config, fileRef job.UploadedFileRef) job.Request {
	endRow := configInt(cfg, "end_row", fileRef.RowCount)

	return job.Request{
		FileID:    fileRef.FileID,
		Task:      configString(cfg, "task", string(catalog.TaskAttributeExtraction)),
		Mode:      configString(cfg, "mode", string(catalog.ModeBatch)),
		Model:     configString(cfg, "llm_model", string(catalog.ModelGPT35Turbo)),
		BatchSize: configInt(cfg, "batch_size", 10),
		RowRange: job.RowRange{
			Start: configInt(cfg, "start_row", 0),
			End:   endRow,
		},
	}
}

func configString(cfg workflow.Config, key, fallback string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func configInt(cfg workflow.Config, key string, fallback int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64
		return int(v)
	}
	return fallback
}
