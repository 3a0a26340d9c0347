package organize_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mangashelf/internal/logging"
	"mangashelf/internal/organize"
	"mangashelf/internal/scan"
	"mangashelf/internal/tag"
	"mangashelf/internal/testsupport"
)

var comicExts = scan.Options{Extensions: []string{".cbz", ".cbr"}}

func newOrganizer(settings organize.Settings) *organize.Organizer {
	if settings.FolderScheme == "" {
		settings.FolderScheme = "title"
	}
	if settings.VerifiedSuffix == "" {
		settings.VerifiedSuffix = "[v]"
	}
	return organize.New(tag.NewCodec(tag.FormatSizeCRC, true), comicExts, settings, logging.NewNop())
}

func TestRunGroupsFilesByTitle(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Berserk v01 (2019) (Digital) (Group).cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "berserk v02 (2020) (Digital) (Group).cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Dragon Ball 001.cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "notes.txt"), 10)

	report, err := newOrganizer(organize.Settings{RemoveEmptyDirs: true}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantBerserk := []string{"Berserk v01 (2019) (Digital) (Group).cbz", "berserk v02 (2020) (Digital) (Group).cbz"}
	if diff := cmp.Diff(wantBerserk, testsupport.ListNames(t, filepath.Join(root, "Berserk"))); diff != "" {
		t.Fatalf("Berserk folder (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Dragon Ball 001.cbz"}, testsupport.ListNames(t, filepath.Join(root, "Dragon Ball"))); diff != "" {
		t.Fatalf("Dragon Ball folder (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"notes.txt"}, testsupport.ListNames(t, root)); diff != "" {
		t.Fatalf("root files (-want +got):\n%s", diff)
	}
	if c := report.Counts(); c.Moved != 3 || c.Skipped != 0 || c.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestRunAddsVerifiedSuffixWhenAllTagged(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Monster v01 [v10DEADBEEF].cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Monster v02 [v10CAFEBABE].cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Pluto v01.cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Pluto v02 [v10DEADBEEF].cbz"), 10)

	if _, err := newOrganizer(organize.Settings{}).Run(context.Background(), root); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if names := testsupport.ListNames(t, filepath.Join(root, "Monster [v]")); len(names) != 2 {
		t.Fatalf("expected both tagged files in suffixed folder, got %v", names)
	}
	if names := testsupport.ListNames(t, filepath.Join(root, "Pluto")); len(names) != 2 {
		t.Fatalf("expected partially tagged group without suffix, got %v", names)
	}
}

func TestRunRenamesExistingFolderToVerifiedName(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Monster", "Monster v01 [v10DEADBEEF].cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Monster", "cover.jpg"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Monster v02 [v10CAFEBABE].cbz"), 10)

	report, err := newOrganizer(organize.Settings{RemoveEmptyDirs: true}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"Monster v01 [v10DEADBEEF].cbz", "Monster v02 [v10CAFEBABE].cbz", "cover.jpg"}
	if diff := cmp.Diff(want, testsupport.ListNames(t, filepath.Join(root, "Monster [v]"))); diff != "" {
		t.Fatalf("renamed folder (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(root, "Monster")); !os.IsNotExist(err) {
		t.Fatalf("expected old folder gone, stat err = %v", err)
	}
	if c := report.Counts(); c.Renamed != 1 || c.Moved != 1 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestRunMergesIntoExistingTarget(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Monster [v]", "Monster v01 [v10DEADBEEF].cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Monster", "Monster v02 [v10CAFEBABE].cbz"), 10)

	report, err := newOrganizer(organize.Settings{RemoveEmptyDirs: true}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if names := testsupport.ListNames(t, filepath.Join(root, "Monster [v]")); len(names) != 2 {
		t.Fatalf("expected merge into existing folder, got %v", names)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "Monster")}, report.RemovedDirs); diff != "" {
		t.Fatalf("removed dirs (-want +got):\n%s", diff)
	}
}

func TestRunSkipsExistingTargetFile(t *testing.T) {
	root := t.TempDir()
	inPlace := filepath.Join(root, "Berserk", "Berserk v01.cbz")
	loose := filepath.Join(root, "Berserk v01.cbz")
	testsupport.WriteBytes(t, inPlace, []byte("original"))
	testsupport.WriteBytes(t, loose, []byte("duplicate"))

	report, err := newOrganizer(organize.Settings{}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	content, err := os.ReadFile(inPlace)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(content) != "original" {
		t.Fatalf("existing file overwritten: %q", content)
	}
	if _, err := os.Stat(loose); err != nil {
		t.Fatalf("expected skipped file to stay put: %v", err)
	}
	want := []organize.Skip{{Path: loose, Target: inPlace, Reason: organize.ReasonTargetExists}}
	if diff := cmp.Diff(want, report.Skipped); diff != "" {
		t.Fatalf("skips (-want +got):\n%s", diff)
	}
	wantLine := "Skipping '" + inPlace + "' as it already exists."
	if !containsLine(report.Log.Lines(), wantLine) {
		t.Fatalf("missing %q in log %v", wantLine, report.Log.Lines())
	}
}

func TestRunDryRunLeavesFilesAlone(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Berserk v01.cbz")
	testsupport.WriteFile(t, src, 10)

	report, err := newOrganizer(organize.Settings{DryRun: true, RemoveEmptyDirs: true}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}
	want := []organize.Move{{From: src, To: filepath.Join(root, "Berserk", "Berserk v01.cbz")}}
	if diff := cmp.Diff(want, report.Plan.Moves); diff != "" {
		t.Fatalf("planned moves (-want +got):\n%s", diff)
	}
	if c := report.Counts(); c.Moved != 1 {
		t.Fatalf("dry run counts: %+v", c)
	}
	if len(report.Moved) != 0 {
		t.Fatalf("dry run applied moves: %v", report.Moved)
	}
}

func TestRunRemovesEmptyFoldersBottomUp(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "incoming", "batch", "Berserk v01.cbz"), 10)

	report, err := newOrganizer(organize.Settings{RemoveEmptyDirs: true}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := []string{filepath.Join(root, "incoming", "batch"), filepath.Join(root, "incoming")}
	if diff := cmp.Diff(want, report.RemovedDirs); diff != "" {
		t.Fatalf("removed dirs (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(root, "Berserk", "Berserk v01.cbz")); err != nil {
		t.Fatalf("expected moved file: %v", err)
	}
}

func TestRunDetailedSchemeRenamesOnNewVolume(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "Berserk v01 (2019) (Digital) (Group)")
	testsupport.WriteFile(t, filepath.Join(oldDir, "Berserk v01 (2019) (Digital) (Group).cbz"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "Berserk v02 (2020) (Digital) (Group).cbz"), 10)

	_, err := newOrganizer(organize.Settings{FolderScheme: "detailed", RemoveEmptyDirs: true}).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	target := filepath.Join(root, "Berserk v01-02 (2019-2020) (Digital) (Group)")
	if names := testsupport.ListNames(t, target); len(names) != 2 {
		t.Fatalf("expected both volumes in %s, got %v", target, names)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Fatalf("expected old folder renamed away, stat err = %v", err)
	}
}

func TestRunInvalidRoot(t *testing.T) {
	_, err := newOrganizer(organize.Settings{}).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}
