package download

import (
	"fmt"
	"time"
)

// OutcomeKind is the terminal state of a task.
type OutcomeKind string

const (
	// OutcomeSuccess means the download finished and its sidecar was written.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeFailure means the download ran and failed.
	OutcomeFailure OutcomeKind = "failure"
	// OutcomeAborted means the task did not run to completion: it panicked or
	// was cancelled.
	OutcomeAborted OutcomeKind = "aborted"
)

// Outcome reports one finished task.
type Outcome struct {
	Identifier    string
	Kind          OutcomeKind
	Reason        string
	Err           error
	Result        Result
	CorrelationID string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// String renders the outcome for status lines.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("%s: downloaded %s", o.Identifier, o.Result.ArtifactPath)
	case OutcomeAborted:
		return fmt.Sprintf("%s: aborted: %s", o.Identifier, o.Reason)
	default:
		return fmt.Sprintf("%s: failed: %s", o.Identifier, o.Reason)
	}
}

// TaskState is the phase of a tracked task.
type TaskState string

const (
	TaskQueued  TaskState = "queued"
	TaskRunning TaskState = "running"
)

// TaskStatus is a point-in-time view of one tracked task.
type TaskStatus struct {
	Identifier string
	State      TaskState
	BytesDone  int64
	BytesTotal int64
	StartedAt  time.Time
}
