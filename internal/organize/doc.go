// Package organize groups archives by the title derived from their
// filenames and moves each group into its own folder.
//
// Planning and applying are separate steps. A plan is built from one scan
// of the library: titles are case folded into keys, existing folders for
// the same title are reused or renamed, and any file whose destination is
// already taken is skipped and recorded. Applying never overwrites.
package organize
