package history

import "time"

// Outcome is the terminal state of a download as stored in the ledger.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeAborted Outcome = "aborted"
)

// Entry is one finished download.
type Entry struct {
	ID            int64
	Identifier    string
	Title         string
	Outcome       Outcome
	ErrorKind     string
	Message       string
	Bytes         int64
	ArtifactPath  string
	CorrelationID string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Elapsed returns how long the download ran.
func (e Entry) Elapsed() time.Duration {
	if e.StartedAt.IsZero() || e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
