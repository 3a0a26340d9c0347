package ledger

import "time"

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Run is one recorded tag, verify or organize invocation.
type Run struct {
	ID         string
	Operation  string
	Root       string
	DryRun     bool
	Status     string
	Error      string
	ExportPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     Counts
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Counts holds the per-operation tallies. Fields that do not apply to an
// operation stay zero.
type Counts struct {
	Tagged      int
	Skipped     int
	Failed      int
	Matches     int
	Mismatches  int
	ParseErrors int
	Unreadable  int
	Untagged    int
	Moved       int
	Renamed     int
}

// Outcome is the recorded result for one file of a run.
type Outcome struct {
	Path     string
	State    string
	Target   string
	Expected string
	Actual   string
	Detail   string
}
