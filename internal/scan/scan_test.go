package scan_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mangashelf/internal/faults"
	"mangashelf/internal/logging"
	"mangashelf/internal/scan"
	"mangashelf/internal/testsupport"
)

func TestWalkSelectsArchivesRecursively(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"a.cbz",
		"b.CBZ",
		"notes.txt",
		"Series/v01.cbr",
		"Series/extra/c001.zip",
		".Trash-1000/old.cbz",
		"cbz",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), 4)
	}

	result, err := scan.Walk(root, scan.Options{
		Extensions: []string{".cbz", ".cbr", ".zip"},
		Exclude:    []string{"**/.Trash-*/**"},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var got []string
	for _, c := range result.Candidates {
		got = append(got, c.Rel)
	}
	want := []string{"Series/extra/c001.zip", "Series/v01.cbr", "a.cbz"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
	if result.Candidates[2].Name() != "a.cbz" || result.Candidates[2].Dir() != root {
		t.Fatalf("unexpected candidate fields: %+v", result.Candidates[2])
	}
}

func TestWalkRejectsMissingRoot(t *testing.T) {
	_, err := scan.Walk(filepath.Join(t.TempDir(), "missing"), scan.Options{Extensions: []string{".cbz"}}, nil)
	if !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateRootRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.cbz")
	testsupport.WriteFile(t, path, 1)
	if err := scan.ValidateRoot(path); !errors.Is(err, faults.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWalkRecordsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "ok.cbz"), 2)
	locked := filepath.Join(root, "locked")
	testsupport.WriteFile(t, filepath.Join(locked, "hidden.cbz"), 2)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result, err := scan.Walk(root, scan.Options{Extensions: []string{".cbz"}}, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Rel != "ok.cbz" {
		t.Fatalf("unexpected candidates: %+v", result.Candidates)
	}
	if len(result.Errors) != 1 || result.Errors[0].Path != locked {
		t.Fatalf("expected locked dir recorded, got %+v", result.Errors)
	}
}

func TestHasExtensionIsCaseSensitive(t *testing.T) {
	exts := []string{".cbz"}
	if !scan.HasExtension("a.cbz", exts) {
		t.Fatal("expected match")
	}
	if scan.HasExtension("a.CBZ", exts) {
		t.Fatal("uppercase suffix must not match")
	}
	if scan.HasExtension(".cbz", exts) {
		t.Fatal("bare extension is not an archive name")
	}
}
