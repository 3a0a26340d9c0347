package organize

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Move relocates one archive into its group folder.
type Move struct {
	From string
	To   string
}

// FolderRename renames an existing folder to the group's target name.
type FolderRename struct {
	From string
	To   string
}

// Skip records an archive left where it is.
type Skip struct {
	Path   string
	Target string
	Reason string
}

// Skip reasons.
const (
	ReasonTargetExists = "target exists"
	ReasonNoTitle      = "no title"
	ReasonFolderTaken  = "folder name taken by a file"
)

// GroupPlan describes the folder chosen for one group.
type GroupPlan struct {
	Title     string
	Folder    string
	Files     int
	AllTagged bool
}

// Plan is the full set of operations for one library root. Renames run
// before moves; move sources are relative to the pre-rename layout.
type Plan struct {
	Root    string
	Groups  []GroupPlan
	Renames []FolderRename
	Moves   []Move
	Skips   []Skip
}

// entry is one scanned archive with its parsed name.
type entry struct {
	path   string
	tokens Tokens
	tagged bool
}

type existingDir struct {
	name string
	path string
}

// buildPlan turns the grouped entries into folder renames and file moves.
// Nothing on disk is touched.
func buildPlan(root string, entries []entry, scheme, suffix string) (*Plan, error) {
	plan := &Plan{Root: root}
	groups, untitled := groupByTitle(entries)
	for _, e := range untitled {
		plan.Skips = append(plan.Skips, Skip{Path: e.path, Reason: ReasonNoTitle})
	}

	existing, err := topLevelDirs(root, suffix)
	if err != nil {
		return nil, err
	}
	claimedDirs := make(map[string]bool)
	claimedTargets := make(map[string]bool)

	for _, key := range sortedKeys(groups) {
		g := groups[key]
		sort.Strings(g.Files)
		name := FolderName(g, scheme, suffix)
		if name == "" {
			for _, path := range g.Files {
				plan.Skips = append(plan.Skips, Skip{Path: path, Reason: ReasonNoTitle})
			}
			continue
		}
		target := filepath.Join(root, name)
		plan.Groups = append(plan.Groups, GroupPlan{
			Title:     g.Title,
			Folder:    target,
			Files:     len(g.Files),
			AllTagged: g.AllTagged(),
		})

		info, statErr := os.Lstat(target)
		switch {
		case statErr == nil && !info.IsDir():
			for _, path := range g.Files {
				plan.Skips = append(plan.Skips, Skip{Path: path, Target: target, Reason: ReasonFolderTaken})
			}
			continue
		case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
			return nil, statErr
		}
		targetExists := statErr == nil
		claimedDirs[target] = true

		var renamedFrom string
		if !targetExists {
			for _, dir := range existing[key] {
				if claimedDirs[dir.path] {
					continue
				}
				plan.Renames = append(plan.Renames, FolderRename{From: dir.path, To: target})
				claimedDirs[dir.path] = true
				renamedFrom = dir.path
				break
			}
		}

		// Files already inside the target (or arriving with a renamed
		// folder) claim their names before anything is moved in.
		var incoming []string
		for _, path := range g.Files {
			dest := filepath.Join(target, filepath.Base(path))
			switch filepath.Dir(path) {
			case target:
				claimedTargets[dest] = true
			case renamedFrom:
				claimedTargets[dest] = true
				plan.Moves = append(plan.Moves, Move{From: path, To: dest})
			default:
				incoming = append(incoming, path)
			}
		}
		for _, path := range incoming {
			dest := filepath.Join(target, filepath.Base(path))
			if claimedTargets[dest] || pathExists(dest) {
				plan.Skips = append(plan.Skips, Skip{Path: path, Target: dest, Reason: ReasonTargetExists})
				continue
			}
			claimedTargets[dest] = true
			plan.Moves = append(plan.Moves, Move{From: path, To: dest})
		}
	}
	return plan, nil
}

// topLevelDirs indexes the folders directly below root by title key.
func topLevelDirs(root, suffix string) (map[string][]existingDir, error) {
	items, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]existingDir)
	for _, item := range items {
		if !item.IsDir() || strings.HasPrefix(item.Name(), ".") {
			continue
		}
		key := folderKey(item.Name(), suffix)
		if key == "" {
			continue
		}
		out[key] = append(out[key], existingDir{name: item.Name(), path: filepath.Join(root, item.Name())})
	}
	return out, nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// rebase maps a pre-rename path onto the folder it was renamed to.
func rebase(path string, renamed map[string]string) string {
	dir := filepath.Dir(path)
	for {
		if to, ok := renamed[dir]; ok {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return path
			}
			return filepath.Join(to, rel)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return path
		}
		dir = parent
	}
}
