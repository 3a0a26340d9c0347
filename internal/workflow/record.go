package workflow

import (
	"context"
	"errors"
	"strings"

	"mangashelf/internal/faults"
	"mangashelf/internal/ledger"
	"mangashelf/internal/organize"
)

// outcomes converts the pipeline report into ledger rows.
func (r *Result) outcomes() []ledger.Outcome {
	var out []ledger.Outcome
	switch {
	case r.Tagging != nil:
		for _, o := range r.Tagging.Outcomes {
			out = append(out, ledger.Outcome{
				Path:     o.Path,
				State:    string(o.State),
				Target:   o.NewPath,
				Expected: o.Tag,
				Actual:   o.CRC,
				Detail:   errorDetail(o.Err),
			})
		}
	case r.Verify != nil:
		for _, res := range r.Verify.Results {
			out = append(out, ledger.Outcome{
				Path:     res.Path,
				State:    string(res.State),
				Expected: res.ExpectedText(),
				Actual:   res.ActualText(),
				Detail:   errorDetail(res.Err),
			})
		}
	case r.Organize != nil:
		out = append(out, organizeOutcomes(r.Organize)...)
	}
	return out
}

func organizeOutcomes(rep *organize.Report) []ledger.Outcome {
	var out []ledger.Outcome
	if rep.DryRun && rep.Plan != nil {
		for _, fr := range rep.Plan.Renames {
			out = append(out, ledger.Outcome{Path: fr.From, State: "planned_rename", Target: fr.To})
		}
		for _, m := range rep.Plan.Moves {
			out = append(out, ledger.Outcome{Path: m.From, State: "planned_move", Target: m.To})
		}
		for _, s := range rep.Plan.Skips {
			out = append(out, ledger.Outcome{Path: s.Path, State: "skipped", Target: s.Target, Detail: s.Reason})
		}
		return out
	}
	for _, fr := range rep.Renamed {
		out = append(out, ledger.Outcome{Path: fr.From, State: "renamed", Target: fr.To})
	}
	for _, m := range rep.Moved {
		out = append(out, ledger.Outcome{Path: m.From, State: "moved", Target: m.To})
	}
	for _, s := range rep.Skipped {
		out = append(out, ledger.Outcome{Path: s.Path, State: "skipped", Target: s.Target, Detail: s.Reason})
	}
	for _, f := range rep.Failed {
		out = append(out, ledger.Outcome{Path: f.Path, State: "failed", Target: f.Target, Detail: errorDetail(f.Err)})
	}
	for _, dir := range rep.RemovedDirs {
		out = append(out, ledger.Outcome{Path: dir, State: "removed_dir"})
	}
	return out
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return faults.Kind(err) + ": " + err.Error()
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return ledger.StatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ledger.StatusCancelled
	default:
		return ledger.StatusFailed
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}
