package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mangashelf/internal/config"
	"mangashelf/internal/ledger"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	if result := CheckLedger(context.Background(), path); !result.Passed || !strings.Contains(result.Detail, "not created yet") {
		t.Fatalf("expected pass for missing ledger, got %+v", result)
	}

	store, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.RecordRun(context.Background(), ledger.Run{ID: "r1", Operation: "tag", Root: "/lib", Status: ledger.StatusCompleted}, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	store.Close()

	result := CheckLedger(context.Background(), path)
	if !result.Passed || !strings.Contains(result.Detail, "1 runs recorded") {
		t.Fatalf("unexpected ledger result: %+v", result)
	}
}

func TestRunAllReportsEveryPath(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	for _, dir := range []string{cfg.Paths.LibraryDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %+v", results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("expected %s to pass, got %q", r.Name, r.Detail)
		}
	}
}

func TestCheckSystemDepsUsesIntegrityCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Integrity.Command = "clearly-not-present-tester"
	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 1 || statuses[0].Available || statuses[0].Command != "clearly-not-present-tester" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}
