// Package textutil provides filename sanitization and title normalization
// helpers.
//
// FoldKey is the comparison key for archive titles: two filenames whose
// titles differ only in letter case or spacing land in the same folder.
package textutil
