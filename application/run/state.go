package run

import (
	"flowboard/domain/job"
)

// State is the orchestrator's lifecycle state
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
)

// Terminal reports whether the state ends a run
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateTimedOut
}

// Active reports whether a run is in progress
func (s State) Active() bool {
	return s == StateSubmitting || s == StatePolling
}

// Event drives the lifecycle state machine. Transitions not listed in
// reduce are no-ops, so a stale event (e.g. a poll result arriving
// after timeout) cannot corrupt state.
type Event interface {
	isEvent()
}

// SubmitRequested fires when preconditions pass and a submit begins
type SubmitRequested struct{}

// SubmitAccepted fires when the backend returns a job id
type SubmitAccepted struct {
	JobID string
}

// SubmitRejected fires when the backend rejects the submission or the
// submit call fails in transport
type SubmitRejected struct {
	Err error
}

// PollResult fires for every successful status poll
type PollResult struct {
	Record job.Record
}

// PollError fires for a failed poll; the poll is retried at the next
// tick and the lifecycle does not move
type PollError struct {
	Err error
}

// TimeoutFired fires when the overall run deadline elapses without a
// terminal status
type TimeoutFired struct{}

// CancelRequested fires on a manual stop
type CancelRequested struct{}

func (SubmitRequested) isEvent() {}
func (SubmitAccepted) isEvent()  {}
func (SubmitRejected) isEvent()  {}
func (PollResult) isEvent()      {}
func (PollError) isEvent()       {}
func (TimeoutFired) isEvent()    {}
func (CancelRequested) isEvent() {}

// reduce is the single transition function over lifecycle states.
// It returns the next state and whether the event was legal in the
// current state; illegal events leave the state unchanged and must not
// be propagated to the graph.
func reduce(s State, ev Event) (State, bool) {
	switch e := ev.(type) {
	case SubmitRequested:
		if s == StateIdle || s.Terminal() {
			return StateSubmitting, true
		}
	case SubmitAccepted:
		if s == StateSubmitting {
			return StatePolling, true
		}
	case SubmitRejected:
		if s == StateSubmitting {
			return StateFailed, true
		}
	case PollResult:
		if s == StatePolling {
			switch e.Record.Status {
			case job.StatusCompleted:
				return StateCompleted, true
			case job.StatusFailed:
				return StateFailed, true
			default:
				return StatePolling, true
			}
		}
	case PollError:
		if s == StatePolling {
			return StatePolling, true
		}
	case TimeoutFired:
		if s == StatePolling {
			return StateTimedOut, true
		}
	case CancelRequested:
		if s.Active() {
			return StateIdle, true
		}
	}
	return s, false
}
