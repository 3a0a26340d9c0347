package tagging

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"mangashelf/internal/checksum"
	"mangashelf/internal/faults"
	"mangashelf/internal/fileutil"
	"mangashelf/internal/integrity"
	"mangashelf/internal/logging"
	"mangashelf/internal/runlog"
	"mangashelf/internal/scan"
	"mangashelf/internal/tag"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDryRun computes and tests every file but renames nothing.
func WithDryRun(enabled bool) Option {
	return func(p *Pipeline) {
		p.dryRun = enabled
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn scan.ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// Pipeline attaches checksum tags to archives that pass the integrity oracle.
type Pipeline struct {
	codec    tag.Codec
	oracle   integrity.Oracle
	scanOpts scan.Options
	logger   *slog.Logger
	dryRun   bool
	progress scan.ProgressFunc
}

// New constructs a tagging pipeline.
func New(codec tag.Codec, oracle integrity.Oracle, scanOpts scan.Options, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		codec:    codec,
		oracle:   oracle,
		scanOpts: scanOpts,
		logger:   logging.NewComponentLogger(logger, "tagging"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run tags every untagged candidate below root. Per-file failures are
// recorded in the report. An error is returned only when root is unusable
// or ctx is cancelled between files; the partial report is returned too.
func (p *Pipeline) Run(ctx context.Context, root string) (*Report, error) {
	logger := logging.WithContext(ctx, p.logger)
	report := &Report{Root: root, DryRun: p.dryRun, Log: runlog.New(logger)}

	found, err := scan.Walk(root, p.scanOpts, logger)
	if err != nil {
		return report, err
	}
	report.ScanErrors = found.Errors
	for _, we := range found.Errors {
		report.Log.Addf("Could not read '%s': %v", we.Path, we.Error)
	}

	total := len(found.Candidates)
	logger.Info("tagging started",
		logging.String(logging.FieldPath, root),
		logging.Int("candidates", total),
		logging.Bool("dry_run", p.dryRun),
	)

	for i, candidate := range found.Candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p.report(i, total, candidate.Path)
		outcome := p.Process(ctx, candidate.Path, report.Log)
		report.Outcomes = append(report.Outcomes, outcome)
		report.Log.Add("")
	}
	p.report(total, total, "")

	counts := report.Counts()
	logger.Info("tagging finished",
		logging.String(logging.FieldPath, root),
		logging.Int("tagged", counts.Tagged),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
	)
	return report, nil
}

// Process runs one file through the state machine and appends its story to
// log.
func (p *Pipeline) Process(ctx context.Context, path string, log *runlog.Log) Outcome {
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldPath, path))
	name := filepath.Base(path)
	log.Addf("Processing '%s'", name)

	if existing, ok := p.codec.Decode(name); ok {
		log.Addf("File '%s' already contains the tag '%s', skipping calculations.", name, existing)
		logger.Debug("already tagged", logging.String("tag", existing.String()))
		return Outcome{Path: path, State: StateSkipped, Tag: existing.String()}
	}

	sum, err := checksum.Compute(path)
	if err != nil {
		log.Addf("Could not read '%s': %v", name, err)
		logging.WarnWithContext(logger, "checksum failed; file skipped", "checksum_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file is readable"),
			logging.String(logging.FieldImpact, "file left untagged"),
		)
		return Outcome{Path: path, State: StateFailed, Err: err}
	}
	log.Addf("Calculated CRC32: %s and size: %d bytes (%s)", sum.Hex(), sum.Size, humanize.IBytes(uint64(sum.Size)))
	outcome := Outcome{Path: path, Size: sum.Size, CRC: sum.Hex()}

	if err := p.oracle.Check(ctx, path); err != nil {
		if !errors.Is(err, faults.ErrOracleFailure) {
			err = faults.Wrap(faults.ErrOracleFailure, "tagging", "integrity", path, err)
		}
		log.Addf("Integrity test failed for '%s'. Tag will not be added.", name)
		logging.WarnWithContext(logger, "integrity test failed; file left untagged", "oracle_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "re-download or repack the archive"),
			logging.String(logging.FieldImpact, "file left untagged"),
		)
		outcome.State = StateFailed
		outcome.Err = err
		return outcome
	}

	t := p.codec.Encode(sum)
	newName := tag.Insert(name, t)
	newPath := filepath.Join(filepath.Dir(path), newName)
	log.Addf("Integrity test passed. New name will be: %s", newName)
	outcome.Tag = t.String()
	outcome.NewPath = newPath

	if p.dryRun {
		log.Addf("Dry run: '%s' not renamed", name)
		outcome.State = StateTagged
		return outcome
	}

	if err := fileutil.RenameNoReplace(path, newPath); err != nil {
		marker := faults.ErrIO
		if errors.Is(err, fileutil.ErrTargetExists) {
			marker = faults.ErrConflict
		}
		err = faults.Wrap(marker, "tagging", "rename", newName, err)
		log.Addf("Could not rename '%s': %v", name, err)
		logging.WarnWithContext(logger, "rename failed; file left untagged", "rename_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove or rename the conflicting file"),
		)
		outcome.State = StateFailed
		outcome.NewPath = ""
		outcome.Err = err
		return outcome
	}

	log.Addf("Renamed '%s' to '%s'", name, newName)
	logger.Info("file tagged",
		logging.String("tag", outcome.Tag),
		logging.String("new_name", newName),
		logging.Int64("size_bytes", outcome.Size),
	)
	outcome.State = StateTagged
	return outcome
}

func (p *Pipeline) report(done, total int, current string) {
	if p.progress != nil {
		p.progress(done, total, current)
	}
}
