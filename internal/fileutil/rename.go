package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// ErrTargetExists is returned when a rename or move would overwrite a file.
var ErrTargetExists = fmt.Errorf("target exists: %w", fs.ErrExist)

// RenameNoReplace atomically renames oldpath to newpath and fails with
// ErrTargetExists instead of replacing an existing newpath.
func RenameNoReplace(oldpath, newpath string) error {
	if oldpath == newpath {
		return nil
	}
	err := renameNoReplace(oldpath, newpath)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("rename %s: %w", newpath, ErrTargetExists)
	}
	return err
}

// renameChecked is the portable fallback: it refuses an existing target and
// then renames. The check and the rename are not one atomic step.
func renameChecked(oldpath, newpath string) error {
	if _, err := os.Lstat(newpath); err == nil {
		return fs.ErrExist
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(oldpath, newpath)
}

// MoveFile moves src to dst without replacing an existing dst. When the two
// paths are on different filesystems the file is copied, verified, and the
// source removed.
func MoveFile(src, dst string) error {
	err := RenameNoReplace(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyVerified(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("move %s: %w", dst, ErrTargetExists)
		}
		return fmt.Errorf("copy across filesystems: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}
