package workflow

import (
	"time"

	"mangashelf/internal/ledger"
	"mangashelf/internal/organize"
	"mangashelf/internal/runlog"
	"mangashelf/internal/tagging"
	"mangashelf/internal/verify"
)

// Result carries the report of whichever pipeline ran. Exactly one of
// Tagging, Verify and Organize is set.
type Result struct {
	RunID      string
	Operation  Operation
	Root       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time

	Tagging  *tagging.Report
	Verify   *verify.Report
	Organize *organize.Report

	// ExportPath is where verification problems were written.
	ExportPath string
	// ExportErr is set when the export could not be written. The run
	// itself still succeeded.
	ExportErr error
}

// Log returns the processing log of the run.
func (r *Result) Log() *runlog.Log {
	switch {
	case r == nil:
		return nil
	case r.Tagging != nil:
		return r.Tagging.Log
	case r.Verify != nil:
		return r.Verify.Log
	case r.Organize != nil:
		return r.Organize.Log
	}
	return nil
}

// Counts flattens the pipeline counts into the ledger's shape.
func (r *Result) Counts() ledger.Counts {
	var c ledger.Counts
	if r == nil {
		return c
	}
	if r.Tagging != nil {
		tc := r.Tagging.Counts()
		c.Tagged, c.Skipped, c.Failed = tc.Tagged, tc.Skipped, tc.Failed
	}
	if r.Verify != nil {
		vc := r.Verify.Counts()
		c.Matches, c.Mismatches = vc.Matches, vc.Mismatches
		c.ParseErrors, c.Unreadable = vc.ParseErrors, vc.Unreadable
		c.Untagged = r.Verify.Untagged
	}
	if r.Organize != nil {
		oc := r.Organize.Counts()
		c.Moved, c.Renamed, c.Skipped, c.Failed = oc.Moved, oc.Renamed, oc.Skipped, oc.Failed
	}
	return c
}
