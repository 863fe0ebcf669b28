package run

import (
	"flowboard/domain/job"
	"flowboard/domain/workflow"
)

// StatusChange assigns a status to one node
type StatusChange struct {
	NodeID string
	Status workflow.NodeStatus
}

// propagate maps a lifecycle event onto node status changes for the
// processor and sink bound to the current run. It is a pure projection
// and idempotent: replaying an event yields the same assignments again.
func propagate(ev Event, processorID, sinkID string) []StatusChange {
	switch e := ev.(type) {
	case SubmitAccepted:
		return []StatusChange{{NodeID: processorID, Status: workflow.StatusRunning}}

	case SubmitRejected:
		return []StatusChange{{NodeID: processorID, Status: workflow.StatusError}}

	case PollResult:
		switch e.Record.Status {
		case job.StatusCompleted:
			changes := []StatusChange{{NodeID: processorID, Status: workflow.StatusCompleted}}
			if sinkID != "" {
				changes = append(changes, StatusChange{NodeID: sinkID, Status: workflow.StatusCompleted})
			}
			return changes
		case job.StatusFailed:
			return []StatusChange{{NodeID: processorID, Status: workflow.StatusError}}
		default:
			return []StatusChange{{NodeID: processorID, Status: workflow.StatusRunning}}
		}

	case TimeoutFired:
		return []StatusChange{{NodeID: processorID, Status: workflow.StatusTimedOut}}
	}

	// SubmitRequested, PollError and CancelRequested leave node
	// statuses untouched
	return nil
}
