package organize

import (
	"mangashelf/internal/runlog"
	"mangashelf/internal/scan"
)

// Failure records an operation that could not be applied.
type Failure struct {
	Path   string
	Target string
	Err    error
}

// Counts summarises an organize run.
type Counts struct {
	Moved   int
	Renamed int
	Skipped int
	Failed  int
	Removed int
}

// Report is the result of one organize pass. On a dry run only Plan is
// populated.
type Report struct {
	Root        string
	DryRun      bool
	Plan        *Plan
	Moved       []Move
	Renamed     []FolderRename
	Skipped     []Skip
	Failed      []Failure
	RemovedDirs []string
	ScanErrors  []scan.WalkError
	Log         *runlog.Log
}

// Counts tallies the applied operations. For a dry run the planned
// operations are counted instead.
func (r *Report) Counts() Counts {
	if r.DryRun && r.Plan != nil {
		return Counts{
			Moved:   len(r.Plan.Moves) - r.inPlace(),
			Renamed: len(r.Plan.Renames),
			Skipped: len(r.Plan.Skips),
		}
	}
	return Counts{
		Moved:   len(r.Moved),
		Renamed: len(r.Renamed),
		Skipped: len(r.Skipped),
		Failed:  len(r.Failed),
		Removed: len(r.RemovedDirs),
	}
}

// inPlace counts planned moves that a folder rename completes on its own.
func (r *Report) inPlace() int {
	if r.Plan == nil || len(r.Plan.Renames) == 0 {
		return 0
	}
	renamed := make(map[string]string, len(r.Plan.Renames))
	for _, fr := range r.Plan.Renames {
		renamed[fr.From] = fr.To
	}
	n := 0
	for _, m := range r.Plan.Moves {
		if rebase(m.From, renamed) == m.To {
			n++
		}
	}
	return n
}
