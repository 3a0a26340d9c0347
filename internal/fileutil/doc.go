// Package fileutil holds filesystem helpers shared by the pipelines:
// no-clobber renames, verified cross-device moves, atomic writes, and
// bottom-up removal of empty directories.
package fileutil
