package tagging

import (
	"mangashelf/internal/runlog"
	"mangashelf/internal/scan"
)

// State is the terminal state of one candidate.
type State string

const (
	StateSkipped State = "skipped"
	StateTagged  State = "tagged"
	StateFailed  State = "failed"
)

// Outcome records what happened to one candidate file.
type Outcome struct {
	Path  string
	State State
	// NewPath is set for tagged files (the planned path on a dry run).
	NewPath string
	// Tag is the tag found on a skipped file or attached to a tagged one.
	Tag string
	// Size and CRC are set once the checksum was computed.
	Size int64
	CRC  string
	// Err explains a failure. It carries a faults marker.
	Err error
}

// Counts summarises a report.
type Counts struct {
	Tagged  int
	Skipped int
	Failed  int
}

// Report is the result of one tagging pass.
type Report struct {
	Root       string
	DryRun     bool
	Outcomes   []Outcome
	ScanErrors []scan.WalkError
	Log        *runlog.Log
}

// Counts tallies outcomes by state.
func (r *Report) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.State {
		case StateTagged:
			c.Tagged++
		case StateSkipped:
			c.Skipped++
		case StateFailed:
			c.Failed++
		}
	}
	return c
}

// Failures returns the outcomes left untagged because of an error, in
// processing order.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			out = append(out, o)
		}
	}
	return out
}
