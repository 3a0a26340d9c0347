package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mangashelf/internal/config"
	"mangashelf/internal/faults"
	"mangashelf/internal/integrity"
	"mangashelf/internal/ledger"
	"mangashelf/internal/logging"
	"mangashelf/internal/notifications"
	"mangashelf/internal/organize"
	"mangashelf/internal/scan"
	"mangashelf/internal/tag"
	"mangashelf/internal/tagging"
	"mangashelf/internal/textutil"
	"mangashelf/internal/verify"
)

// Option configures a Runner.
type Option func(*Runner)

// WithOracle replaces the configured integrity tester.
func WithOracle(oracle integrity.Oracle) Option {
	return func(r *Runner) {
		r.oracle = oracle
	}
}

// WithLedger records every run in store. A nil store disables recording.
func WithLedger(store *ledger.Store) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithNotifier replaces the notifier built from configuration.
func WithNotifier(n notifications.Notifier) Option {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithProgress registers a per-file progress callback.
func WithProgress(fn scan.ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// Runner dispatches requests to the tagging, verification and organize
// pipelines. It validates the target once, holds a per-library lock for
// the duration of the run and records the outcome in the ledger.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	codec    tag.Codec
	oracle   integrity.Oracle
	store    *ledger.Store
	notifier notifications.Notifier
	progress scan.ProgressFunc
	now      func() time.Time
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "workflow", "init", "config is nil", nil)
	}
	format, err := tag.ParseFormat(cfg.Tagging.Format)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "workflow", "init", "tagging.format", err)
	}
	r := &Runner{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		codec:    tag.NewCodec(format, cfg.Tagging.AcceptLegacy),
		notifier: notifications.New(cfg),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes req. Per-file failures live in the returned report; an
// error means the run could not start or finish: invalid directory, lock
// held by another run, cancellation, or a ledger failure.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := ParseOperation(string(req.Operation)); err != nil {
		return nil, faults.Wrap(faults.ErrInvalidInput, "workflow", "dispatch", "", err)
	}
	root, err := r.resolveRoot(req.Directory)
	if err != nil {
		return nil, err
	}
	if err := scan.ValidateRoot(root); err != nil {
		return nil, err
	}

	unlock, err := r.acquireLock(root)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := &Result{
		RunID:     uuid.NewString(),
		Operation: req.Operation,
		Root:      root,
		DryRun:    req.DryRun && req.Operation != OpVerify,
		StartedAt: r.now(),
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	ctx = logging.WithOperation(ctx, string(req.Operation))
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldPath, root),
		logging.Bool("dry_run", result.DryRun),
	)

	runErr := r.dispatch(ctx, req, result)
	result.FinishedAt = r.now()

	if runErr == nil && req.Operation == OpVerify && strings.TrimSpace(req.ExportPath) != "" && result.Verify != nil {
		r.export(result, req.ExportPath, logger)
	}

	if recErr := r.record(ctx, result, runErr); recErr != nil {
		logging.ErrorWithContext(logger, "ledger write failed", "ledger_write_failed",
			logging.Error(recErr),
			logging.String(logging.FieldErrorHint, "check ledger.path permissions or disable the ledger"),
		)
		if runErr == nil {
			runErr = recErr
		}
	}

	counts := result.Counts()
	logger.Info("run finished",
		logging.String(logging.FieldPath, root),
		logging.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
		logging.Int("tagged", counts.Tagged),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
		logging.Int("matches", counts.Matches),
		logging.Int("mismatches", counts.Mismatches),
		logging.Int("moved", counts.Moved),
	)
	r.notify(ctx, result, runErr, logger)
	return result, runErr
}

// notify never fails the run; delivery problems are only logged.
func (r *Runner) notify(ctx context.Context, result *Result, runErr error, logger *slog.Logger) {
	if r.notifier == nil {
		return
	}
	summary := notifications.RunSummary{
		RunID:     result.RunID,
		Operation: string(result.Operation),
		Root:      result.Root,
		DryRun:    result.DryRun,
		Status:    runStatus(runErr),
		Counts:    result.Counts(),
		Duration:  result.FinishedAt.Sub(result.StartedAt),
		Err:       runErr,
	}
	if err := r.notifier.RunFinished(context.WithoutCancel(ctx), summary); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run summary was not delivered"),
		)
	}
}

func (r *Runner) dispatch(ctx context.Context, req Request, result *Result) error {
	root := result.Root
	scanOpts := scan.Options{Extensions: r.cfg.Scan.Extensions, Exclude: r.cfg.Scan.Exclude}

	switch req.Operation {
	case OpTag:
		oracle, err := r.integrityOracle()
		if err != nil {
			return err
		}
		p := tagging.New(r.codec, oracle, scanOpts, r.logger,
			tagging.WithDryRun(req.DryRun),
			tagging.WithProgress(r.progress),
		)
		report, err := p.Run(ctx, root)
		result.Tagging = report
		return err
	case OpVerify:
		p := verify.New(r.codec, scanOpts, r.logger, verify.WithProgress(r.progress))
		report, err := p.Run(ctx, root)
		result.Verify = report
		return err
	case OpOrganize:
		orgScan := scan.Options{Extensions: r.cfg.Organize.Extensions, Exclude: r.cfg.Scan.Exclude}
		o := organize.New(r.codec, orgScan, organize.Settings{
			FolderScheme:    r.cfg.Organize.FolderScheme,
			VerifiedSuffix:  r.cfg.Organize.VerifiedSuffix,
			RemoveEmptyDirs: r.cfg.Organize.RemoveEmptyDirs,
			DryRun:          req.DryRun,
		}, r.logger)
		report, err := o.Run(ctx, root)
		result.Organize = report
		return err
	}
	return faults.Wrap(faults.ErrInvalidInput, "workflow", "dispatch", string(req.Operation), nil)
}

func (r *Runner) integrityOracle() (integrity.Oracle, error) {
	if r.oracle != nil {
		return r.oracle, nil
	}
	tester, err := integrity.NewTester(r.cfg.Integrity.Command, r.cfg.Integrity.Args, r.cfg.Integrity.TimeoutSeconds)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "workflow", "integrity", "integrity.command", err)
	}
	r.oracle = tester
	return tester, nil
}

func (r *Runner) export(result *Result, target string, logger *slog.Logger) {
	path, err := config.ExpandPath(target)
	if err != nil {
		result.ExportErr = faults.Wrap(faults.ErrExportWrite, "verify", "export", target, err)
		return
	}
	result.ExportPath = path
	if err := result.Verify.Export(path); err != nil {
		result.ExportErr = err
		logging.WarnWithContext(logger, "mismatch export failed", "export_write_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the export directory exists and is writable"),
			logging.String(logging.FieldImpact, "verification results were not saved to file"),
		)
		return
	}
	result.Verify.Log.Addf("Exported %d problem(s) to '%s'", len(result.Verify.Problems()), path)
}

func (r *Runner) record(ctx context.Context, result *Result, runErr error) error {
	if r.store == nil {
		return nil
	}
	run := ledger.Run{
		ID:         result.RunID,
		Operation:  string(result.Operation),
		Root:       result.Root,
		DryRun:     result.DryRun,
		Status:     runStatus(runErr),
		Error:      errorMessage(runErr),
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Counts:     result.Counts(),
	}
	if result.ExportErr == nil {
		run.ExportPath = result.ExportPath
	}
	// A cancelled run is still recorded, so the write must outlive ctx.
	if err := r.store.RecordRun(context.WithoutCancel(ctx), run, result.outcomes()); err != nil {
		return faults.Wrap(faults.ErrIO, "ledger", "record", result.RunID, err)
	}
	return nil
}

func (r *Runner) resolveRoot(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = r.cfg.Paths.LibraryDir
	}
	if dir == "" {
		return "", faults.Wrap(faults.ErrInvalidInput, "workflow", "resolve", "no directory given and paths.library_dir is unset", nil)
	}
	expanded, err := config.ExpandPath(dir)
	if err != nil {
		return "", faults.Wrap(faults.ErrInvalidInput, "workflow", "resolve", dir, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", faults.Wrap(faults.ErrInvalidInput, "workflow", "resolve", dir, err)
	}
	return abs, nil
}

// LockPath returns the lock file guarding root.
func (r *Runner) LockPath(root string) string {
	return filepath.Join(r.cfg.LockDir(), textutil.SanitizeToken(root)+".lock")
}

func (r *Runner) acquireLock(root string) (func(), error) {
	if err := os.MkdirAll(r.cfg.LockDir(), 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "workflow", "lock", "create lock directory", err)
	}
	path := r.LockPath(root)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "workflow", "lock", path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrBusy, "workflow", "lock",
			fmt.Sprintf("another mangashelf run is using %s", root), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil && !errors.Is(err, os.ErrClosed) {
			r.logger.Warn("failed to release library lock",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
		}
	}, nil
}
