//go:build linux

package fileutil

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

func renameNoReplace(oldpath, newpath string) error {
	err := unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EEXIST):
		return fs.ErrExist
	case errors.Is(err, unix.EINVAL), errors.Is(err, unix.ENOSYS):
		// filesystem or kernel without RENAME_NOREPLACE
		return renameChecked(oldpath, newpath)
	default:
		return &fs.PathError{Op: "rename", Path: oldpath, Err: err}
	}
}
