package run

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowboard/domain/job"
	"flowboard/domain/workflow"
)

func TestPropagate_SubmitAcceptedMarksProcessorRunning(t *testing.T) {
	changes := propagate(SubmitAccepted{JobID: "job-1"}, "2", "3")

	require.Len(t, changes, 1)
	assert.Equal(t, StatusChange{NodeID: "2", Status: workflow.StatusRunning}, changes[0])
}

func TestPropagate_ProcessingResultIsIdempotent(t *testing.T) {
	ev := PollResult{Record: job.Record{Status: job.StatusProcessing}}

	first := propagate(ev, "2", "3")
	second := propagate(ev, "2", "3")

	require.Len(t, first, 1)
	assert.Equal(t, StatusChange{NodeID: "2", Status: workflow.StatusRunning}, first[0])
	assert.Equal(t, first, second)
}

func TestPropagate_CompletionMarksProcessorAndSink(t *testing.T) {
	changes := propagate(PollResult{Record: job.Record{Status: job.StatusCompleted}}, "2", "3")

	require.Len(t, changes, 2)
	assert.Equal(t, StatusChange{NodeID: "2", Status: workflow.StatusCompleted}, changes[0])
	assert.Equal(t, StatusChange{NodeID: "3", Status: workflow.StatusCompleted}, changes[1])
}

func TestPropagate_CompletionWithoutSink(t *testing.T) {
	changes := propagate(PollResult{Record: job.Record{Status: job.StatusCompleted}}, "2", "")

	require.Len(t, changes, 1)
	assert.Equal(t, "2", changes[0].NodeID)
}

func TestPropagate_FailureMarksProcessorError(t *testing.T) {
	changes := propagate(PollResult{Record: job.Record{Status: job.StatusFailed}}, "2", "3")

	require.Len(t, changes, 1)
	assert.Equal(t, StatusChange{NodeID: "2", Status: workflow.StatusError}, changes[0])

	changes = propagate(SubmitRejected{Err: errors.New("detail")}, "2", "3")
	require.Len(t, changes, 1)
	assert.Equal(t, workflow.StatusError, changes[0].Status)
}

func TestPropagate_TimeoutMarksProcessorTimedOut(t *testing.T) {
	changes := propagate(TimeoutFired{}, "2", "3")

	require.Len(t, changes, 1)
	assert.Equal(t, StatusChange{NodeID: "2", Status: workflow.StatusTimedOut}, changes[0])
}

func TestPropagate_NeutralEventsTouchNothing(t *testing.T) {
	assert.Nil(t, propagate(SubmitRequested{}, "2", "3"))
	assert.Nil(t, propagate(PollError{Err: errors.New("transient")}, "2", "3"))
	assert.Nil(t, propagate(CancelRequested{}, "2", "3"))
}
