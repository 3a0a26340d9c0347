package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"mangashelf/internal/faults"
	"mangashelf/internal/logging"
)

// Candidate is one archive file found under the scan root.
type Candidate struct {
	Path string
	// Rel is Path relative to the scan root, slash separated.
	Rel string
}

// Name returns the file's base name.
func (c Candidate) Name() string {
	return filepath.Base(c.Path)
}

// Dir returns the directory holding the file.
func (c Candidate) Dir() string {
	return filepath.Dir(c.Path)
}

// Options selects candidates.
type Options struct {
	// Extensions are case-sensitive filename suffixes such as ".cbz".
	Extensions []string
	// Exclude holds doublestar patterns matched against Rel.
	Exclude []string
}

// Result contains the candidates and any directories that could not be read.
type Result struct {
	Candidates []Candidate
	Errors     []WalkError
}

// WalkError pairs a path with the error met while reading it.
type WalkError struct {
	Path  string
	Error error
}

// ValidateRoot confirms root is an existing directory.
func ValidateRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return faults.Wrap(faults.ErrInvalidInput, "scan", "validate", "no directory given", nil)
	}
	info, err := os.Stat(root)
	if err != nil {
		return faults.Wrap(faults.ErrInvalidInput, "scan", "validate", root, err)
	}
	if !info.IsDir() {
		return faults.Wrap(faults.ErrInvalidInput, "scan", "validate", fmt.Sprintf("%s is not a directory", root), nil)
	}
	return nil
}

// Walk collects every regular file under root whose name ends in one of the
// configured extensions. The list is complete before any file is processed
// and is sorted by path. Unreadable subdirectories are recorded and skipped.
func Walk(root string, opts Options, logger *slog.Logger) (Result, error) {
	if err := ValidateRoot(root); err != nil {
		return Result{}, err
	}
	var result Result

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			result.Errors = append(result.Errors, WalkError{Path: path, Error: walkErr})
			logging.WarnWithContext(logger, "directory unreadable; skipped", "scan_unreadable",
				logging.String(logging.FieldPath, path),
				logging.Error(walkErr),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
				logging.String(logging.FieldImpact, "files below this directory were not processed"),
			)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if path != root && excluded(opts.Exclude, rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if !HasExtension(entry.Name(), opts.Extensions) || excluded(opts.Exclude, rel) {
			return nil
		}
		result.Candidates = append(result.Candidates, Candidate{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
			return Result{}, faults.Wrap(faults.ErrInvalidInput, "scan", "walk", root, err)
		}
		return Result{}, faults.Wrap(faults.ErrIO, "scan", "walk", root, err)
	}

	sort.Slice(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Path < result.Candidates[j].Path
	})
	return result, nil
}

// HasExtension reports whether name ends with any of exts (case-sensitive).
func HasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// ProgressFunc receives the count of processed candidates, the total, and
// the path about to be processed next (empty once done == total).
type ProgressFunc func(done, total int, current string)
