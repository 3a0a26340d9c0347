package organize

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"mangashelf/internal/faults"
	"mangashelf/internal/fileutil"
	"mangashelf/internal/logging"
	"mangashelf/internal/runlog"
	"mangashelf/internal/scan"
	"mangashelf/internal/tag"
)

// Settings control folder naming and cleanup.
type Settings struct {
	FolderScheme    string
	VerifiedSuffix  string
	RemoveEmptyDirs bool
	DryRun          bool
}

// Organizer moves archives into one folder per title.
type Organizer struct {
	codec    tag.Codec
	scanOpts scan.Options
	settings Settings
	logger   *slog.Logger
}

// New constructs an Organizer. The codec decides which files count as
// tagged for the verified suffix.
func New(codec tag.Codec, scanOpts scan.Options, settings Settings, logger *slog.Logger) *Organizer {
	return &Organizer{
		codec:    codec,
		scanOpts: scanOpts,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "organize"),
	}
}

// Plan scans root and computes the operations without applying them.
func (o *Organizer) Plan(ctx context.Context, root string) (*Plan, []scan.WalkError, error) {
	logger := logging.WithContext(ctx, o.logger)
	found, err := scan.Walk(root, o.scanOpts, logger)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]entry, 0, len(found.Candidates))
	for _, c := range found.Candidates {
		_, tagged := o.codec.Decode(c.Name())
		entries = append(entries, entry{path: c.Path, tokens: ParseName(c.Name()), tagged: tagged})
	}
	plan, err := buildPlan(root, entries, o.settings.FolderScheme, o.settings.VerifiedSuffix)
	if err != nil {
		return nil, found.Errors, faults.Wrap(faults.ErrIO, "organize", "plan", "inspect library folders", err)
	}
	return plan, found.Errors, nil
}

// Run plans and, unless this is a dry run, applies the reorganisation.
// Per-file problems are recorded in the report; an error is returned only
// when root is unusable or ctx is cancelled.
func (o *Organizer) Run(ctx context.Context, root string) (*Report, error) {
	logger := logging.WithContext(ctx, o.logger)
	report := &Report{Root: root, DryRun: o.settings.DryRun, Log: runlog.New(logger)}

	plan, scanErrs, err := o.Plan(ctx, root)
	report.ScanErrors = scanErrs
	for _, we := range scanErrs {
		report.Log.Addf("Could not read '%s': %v", we.Path, we.Error)
	}
	if err != nil {
		return report, err
	}
	report.Plan = plan
	logger.Info("organize planned",
		logging.String(logging.FieldPath, root),
		logging.Int("groups", len(plan.Groups)),
		logging.Int("moves", len(plan.Moves)),
		logging.Int("renames", len(plan.Renames)),
		logging.Int("skips", len(plan.Skips)),
		logging.Bool("dry_run", report.DryRun),
	)

	if report.DryRun {
		for _, fr := range plan.Renames {
			report.Log.Addf("Would rename folder '%s' to '%s'", fr.From, fr.To)
		}
		for _, m := range plan.Moves {
			report.Log.Addf("Would move '%s' to '%s'", m.From, m.To)
		}
		for _, s := range plan.Skips {
			logSkip(report.Log, s)
		}
		return report, nil
	}
	return report, o.apply(ctx, plan, report, logger)
}

func (o *Organizer) apply(ctx context.Context, plan *Plan, report *Report, logger *slog.Logger) error {
	renamed := make(map[string]string, len(plan.Renames))
	for _, fr := range plan.Renames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fileutil.RenameNoReplace(fr.From, fr.To); err != nil {
			// Files stay in the old folder and are moved individually.
			report.Failed = append(report.Failed, Failure{Path: fr.From, Target: fr.To, Err: renameFault(err)})
			report.Log.Addf("Could not rename folder '%s' to '%s': %v", fr.From, fr.To, err)
			logging.WarnWithContext(logger, "folder rename failed", "organize_rename_failed",
				logging.String(logging.FieldPath, fr.From),
				logging.String("target", fr.To),
				logging.Error(err),
				logging.String(logging.FieldImpact, "files are moved one by one instead"),
			)
			continue
		}
		renamed[fr.From] = fr.To
		report.Renamed = append(report.Renamed, fr)
		report.Log.Addf("Renamed folder '%s' to '%s'", fr.From, fr.To)
	}

	for _, s := range plan.Skips {
		report.Skipped = append(report.Skipped, s)
		logSkip(report.Log, s)
	}

	for _, m := range plan.Moves {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := rebase(m.From, renamed)
		if src == m.To {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(m.To), 0o755); err != nil {
			report.Failed = append(report.Failed, Failure{Path: src, Target: m.To, Err: faults.Wrap(faults.ErrIO, "organize", "mkdir", "create folder", err)})
			report.Log.Addf("Could not create folder for '%s': %v", m.To, err)
			continue
		}
		if err := fileutil.MoveFile(src, m.To); err != nil {
			if errors.Is(err, fileutil.ErrTargetExists) {
				skip := Skip{Path: src, Target: m.To, Reason: ReasonTargetExists}
				report.Skipped = append(report.Skipped, skip)
				logSkip(report.Log, skip)
				continue
			}
			report.Failed = append(report.Failed, Failure{Path: src, Target: m.To, Err: faults.Wrap(faults.ErrIO, "organize", "move", "move archive", err)})
			report.Log.Addf("Could not move '%s': %v", src, err)
			logging.WarnWithContext(logger, "archive move failed", "organize_move_failed",
				logging.String(logging.FieldPath, src),
				logging.String("target", m.To),
				logging.Error(err),
			)
			continue
		}
		report.Moved = append(report.Moved, Move{From: src, To: m.To})
		report.Log.Addf("Moved '%s' to '%s'", src, m.To)
	}

	if o.settings.RemoveEmptyDirs {
		removed, err := fileutil.RemoveEmptyDirs(plan.Root)
		report.RemovedDirs = removed
		for _, dir := range removed {
			report.Log.Addf("Removed empty folder '%s'", dir)
		}
		if err != nil {
			logging.WarnWithContext(logger, "empty folder cleanup incomplete", "organize_prune_failed",
				logging.String(logging.FieldPath, plan.Root),
				logging.Error(err),
				logging.String(logging.FieldImpact, "some empty folders remain"),
			)
		}
	}

	c := report.Counts()
	logger.Info("organize finished",
		logging.String(logging.FieldPath, plan.Root),
		logging.Int("moved", c.Moved),
		logging.Int("renamed", c.Renamed),
		logging.Int("skipped", c.Skipped),
		logging.Int("failed", c.Failed),
		logging.Int("removed_dirs", c.Removed),
	)
	return nil
}

func renameFault(err error) error {
	if errors.Is(err, fileutil.ErrTargetExists) {
		return faults.Wrap(faults.ErrConflict, "organize", "rename folder", "target folder exists", err)
	}
	return faults.Wrap(faults.ErrIO, "organize", "rename folder", "rename folder", err)
}

func logSkip(log *runlog.Log, s Skip) {
	switch s.Reason {
	case ReasonTargetExists:
		log.Addf("Skipping '%s' as it already exists.", s.Target)
	case ReasonNoTitle:
		log.Addf("Skipping '%s': no title could be derived.", s.Path)
	default:
		log.Addf("Skipping '%s': %s.", s.Path, s.Reason)
	}
}
