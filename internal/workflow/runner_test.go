package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"mangashelf/internal/faults"
	"mangashelf/internal/ledger"
	"mangashelf/internal/logging"
	"mangashelf/internal/notifications"
	"mangashelf/internal/testsupport"
	"mangashelf/internal/workflow"
)

func TestRunTagRecordsLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteBytes(t, filepath.Join(cfg.Paths.LibraryDir, "a.cbz"), []byte("0123456789"))
	testsupport.WriteBytes(t, filepath.Join(cfg.Paths.LibraryDir, "bad.cbz"), []byte("broken"))

	runner, err := workflow.NewRunner(cfg, logging.NewNop(),
		workflow.WithOracle(testsupport.NewStubOracle("bad.cbz")),
		workflow.WithLedger(store),
	)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run(context.Background(), workflow.Request{Operation: workflow.OpTag})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Root != cfg.Paths.LibraryDir {
		t.Fatalf("expected library_dir default, got %q", result.Root)
	}
	if c := result.Counts(); c.Tagged != 1 || c.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}

	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != result.RunID || run.Operation != "tag" || run.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Counts.Tagged != 1 || run.Counts.Failed != 1 {
		t.Fatalf("unexpected recorded counts: %+v", run.Counts)
	}
	outcomes, err := store.RunOutcomes(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("RunOutcomes: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected two outcomes, got %+v", outcomes)
	}
	if outcomes[0].State != "tagged" || outcomes[1].State != "failed" {
		t.Fatalf("unexpected outcome states: %+v", outcomes)
	}
	if outcomes[1].Detail == "" {
		t.Fatal("expected failure detail for rejected archive")
	}
}

func TestRunVerifyExportFailureKeepsResult(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	testsupport.WriteBytes(t, filepath.Join(cfg.Paths.LibraryDir, "a.cbz"), []byte("0123456789"))

	runner, err := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithOracle(testsupport.NewStubOracle()))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	ctx := context.Background()
	if _, err := runner.Run(ctx, workflow.Request{Operation: workflow.OpTag}); err != nil {
		t.Fatalf("tag run: %v", err)
	}

	exportPath := filepath.Join(testsupport.BaseDir(cfg), "missing", "out.txt")
	result, err := runner.Run(ctx, workflow.Request{Operation: workflow.OpVerify, ExportPath: exportPath})
	if err != nil {
		t.Fatalf("verify run returned error: %v", err)
	}
	if !errors.Is(result.ExportErr, faults.ErrExportWrite) {
		t.Fatalf("expected export write error, got %v", result.ExportErr)
	}
	if c := result.Counts(); c.Matches != 1 || c.Mismatches != 0 {
		t.Fatalf("unexpected verify counts: %+v", c)
	}
}

func TestRunVerifyWritesExport(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	testsupport.WriteBytes(t, filepath.Join(cfg.Paths.LibraryDir, "a [v10DEADBEEF].cbz"), []byte("0123456789"))

	runner, err := workflow.NewRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	exportPath := filepath.Join(testsupport.BaseDir(cfg), "mismatches.txt")
	result, err := runner.Run(context.Background(), workflow.Request{Operation: workflow.OpVerify, ExportPath: exportPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExportErr != nil {
		t.Fatalf("unexpected export error: %v", result.ExportErr)
	}
	content, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("expected mismatch block in export")
	}
	if c := result.Counts(); c.Mismatches != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestRunOrganizeDryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	src := filepath.Join(cfg.Paths.LibraryDir, "Berserk v01.cbz")
	testsupport.WriteFile(t, src, 10)

	runner, err := workflow.NewRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run(context.Background(), workflow.Request{Operation: workflow.OpOrganize, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Organize == nil || len(result.Organize.Plan.Moves) != 1 {
		t.Fatalf("expected one planned move, got %+v", result.Organize)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry run moved file: %v", err)
	}
}

func TestRunRejectsMissingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	runner, err := workflow.NewRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	_, err = runner.Run(context.Background(), workflow.Request{
		Operation: workflow.OpVerify,
		Directory: filepath.Join(testsupport.BaseDir(cfg), "nope"),
	})
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRunRejectsUnknownOperation(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	runner, err := workflow.NewRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := runner.Run(context.Background(), workflow.Request{Operation: "dedupe"}); !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRunFailsWhenLibraryLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLedgerDisabled())
	runner, err := workflow.NewRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if err := os.MkdirAll(cfg.LockDir(), 0o755); err != nil {
		t.Fatalf("mkdir lock dir: %v", err)
	}
	held := flock.New(runner.LockPath(cfg.Paths.LibraryDir))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	if _, err := runner.Run(context.Background(), workflow.Request{Operation: workflow.OpVerify}); !errors.Is(err, faults.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestRunCancelledIsRecorded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LibraryDir, "a.cbz"), 10)

	runner, err := workflow.NewRunner(cfg, logging.NewNop(),
		workflow.WithOracle(testsupport.NewStubOracle()),
		workflow.WithLedger(store),
	)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx, workflow.Request{Operation: workflow.OpTag}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.StatusCancelled {
		t.Fatalf("expected cancelled run recorded, got %+v", runs)
	}
}

type recordingNotifier struct {
	summaries []notifications.RunSummary
	err       error
}

func (r *recordingNotifier) RunFinished(_ context.Context, s notifications.RunSummary) error {
	r.summaries = append(r.summaries, s)
	return r.err
}

func (r *recordingNotifier) Test(context.Context) error { return nil }

func TestRunNotifiesSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteBytes(t, filepath.Join(cfg.Paths.LibraryDir, "x [v5DEADBEEF].cbz"), []byte("hello"))
	notifier := &recordingNotifier{err: errors.New("ntfy unreachable")}

	runner, err := workflow.NewRunner(cfg, logging.NewNop(), workflow.WithNotifier(notifier))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run(context.Background(), workflow.Request{Operation: workflow.OpVerify})
	if err != nil {
		t.Fatalf("notification failure must not fail the run: %v", err)
	}
	if len(notifier.summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(notifier.summaries))
	}
	got := notifier.summaries[0]
	if got.RunID != result.RunID || got.Operation != "verify" || got.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.Counts.Mismatches != 1 || got.Problems() != 1 {
		t.Fatalf("unexpected summary counts: %+v", got.Counts)
	}
}

func TestParseOperation(t *testing.T) {
	for _, value := range []string{"tag", "Verify", " ORGANIZE "} {
		if _, err := workflow.ParseOperation(value); err != nil {
			t.Fatalf("ParseOperation(%q): %v", value, err)
		}
	}
	if _, err := workflow.ParseOperation("menu"); err == nil {
		t.Fatal("expected error for unknown operation")
	}
}
