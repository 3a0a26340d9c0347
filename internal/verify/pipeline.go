package verify

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"mangashelf/internal/checksum"
	"mangashelf/internal/faults"
	"mangashelf/internal/logging"
	"mangashelf/internal/runlog"
	"mangashelf/internal/scan"
	"mangashelf/internal/tag"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress registers a progress callback.
func WithProgress(fn scan.ProgressFunc) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// Pipeline recomputes checksums of tagged files and compares them with the
// values embedded in their names.
type Pipeline struct {
	codec    tag.Codec
	scanOpts scan.Options
	logger   *slog.Logger
	progress scan.ProgressFunc
}

// New constructs a verification pipeline.
func New(codec tag.Codec, scanOpts scan.Options, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		codec:    codec,
		scanOpts: scanOpts,
		logger:   logging.NewComponentLogger(logger, "verify"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run verifies every tagged candidate below root. Untagged files are
// excluded from every count.
func (p *Pipeline) Run(ctx context.Context, root string) (*Report, error) {
	logger := logging.WithContext(ctx, p.logger)
	report := &Report{Root: root, Log: runlog.New(logger)}

	found, err := scan.Walk(root, p.scanOpts, logger)
	if err != nil {
		return report, err
	}
	report.ScanErrors = found.Errors
	for _, we := range found.Errors {
		report.Log.Addf("Could not read '%s': %v", we.Path, we.Error)
	}

	type pending struct {
		path       string
		inspection tag.Inspection
	}
	work := make([]pending, 0, len(found.Candidates))
	for _, c := range found.Candidates {
		insp := p.codec.Inspect(c.Name())
		if insp.State == tag.Absent {
			report.Untagged++
			continue
		}
		work = append(work, pending{path: c.Path, inspection: insp})
	}

	total := len(work)
	logger.Info("verification started",
		logging.String(logging.FieldPath, root),
		logging.Int("tagged_files", total),
		logging.Int("untagged_files", report.Untagged),
	)

	for i, item := range work {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p.report(i, total, item.path)
		report.Results = append(report.Results, p.check(ctx, item.path, item.inspection, report.Log))
	}
	p.report(total, total, "")

	counts := report.Counts()
	report.Log.Add("")
	report.Log.Addf("Total Matches: %d", counts.Matches)
	report.Log.Addf("Total Mismatches: %d", counts.Mismatches)
	if counts.ParseErrors > 0 {
		report.Log.Addf("Total Parse Errors: %d", counts.ParseErrors)
	}
	if counts.Unreadable > 0 {
		report.Log.Addf("Total Unreadable: %d", counts.Unreadable)
	}

	logger.Info("verification finished",
		logging.String(logging.FieldPath, root),
		logging.Int("matches", counts.Matches),
		logging.Int("mismatches", counts.Mismatches),
		logging.Int("parse_errors", counts.ParseErrors),
		logging.Int("unreadable", counts.Unreadable),
	)
	return report, nil
}

// Verify checks a single file. Files without a tag return false.
func (p *Pipeline) Verify(ctx context.Context, path string, log *runlog.Log) (Result, bool) {
	insp := p.codec.Inspect(filepath.Base(path))
	if insp.State == tag.Absent {
		return Result{}, false
	}
	return p.check(ctx, path, insp, log), true
}

func (p *Pipeline) check(ctx context.Context, path string, insp tag.Inspection, log *runlog.Log) Result {
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldPath, path))
	name := filepath.Base(path)
	result := Result{Path: path, RawTag: insp.Raw}

	if insp.State == tag.Malformed {
		result.State = StateParseError
		result.Err = faults.Wrap(faults.ErrTagParse, "verify", "decode", fmt.Sprintf("%s: %q", name, insp.Raw), nil)
		log.Addf("Error parsing '%s': malformed tag %q", name, insp.Raw)
		logging.WarnWithContext(logger, "malformed tag", "tag_parse_error",
			logging.String("tag", insp.Raw),
			logging.String(logging.FieldErrorHint, "rename the file to remove or correct the tag"),
			logging.String(logging.FieldImpact, "file cannot be verified"),
		)
		return result
	}

	result.HasSize = insp.Tag.Format.HasSize()
	result.Expected = expectedFields(insp.Tag)

	sum, err := checksum.Compute(path)
	if err != nil {
		result.State = StateUnreadable
		result.Err = err
		log.Addf("Could not read '%s': %v", name, err)
		logging.WarnWithContext(logger, "checksum failed", "checksum_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file is readable"),
			logging.String(logging.FieldImpact, "file cannot be verified"),
		)
		return result
	}
	result.Actual = Fields{Size: sum.Size, CRC32: sum.Hex()}

	match := result.Actual.CRC32 == result.Expected.CRC32
	if result.HasSize && result.Actual.Size != result.Expected.Size {
		match = false
	}

	entry := fmt.Sprintf("File: %s\nExpected: %s\nActual: %s", name, result.ExpectedText(), result.ActualText())
	if match {
		result.State = StateMatch
		log.Add("Match:\n" + entry)
		logger.Debug("checksum match", logging.String("crc32", result.Actual.CRC32))
		return result
	}

	result.State = StateMismatch
	log.Add("Mismatch:\n" + entry)
	logging.WarnWithContext(logger, "checksum mismatch", "checksum_mismatch",
		logging.Alert("content_changed"),
		logging.String("expected", result.ExpectedText()),
		logging.String("actual", result.ActualText()),
		logging.String(logging.FieldErrorHint, "restore the file from a known good copy"),
		logging.String(logging.FieldImpact, "file content differs from when it was tagged"),
	)
	return result
}

func (p *Pipeline) report(done, total int, current string) {
	if p.progress != nil {
		p.progress(done, total, current)
	}
}
