// Package tagging computes checksums for untagged archives, consults the
// integrity oracle, and renames passing files to carry their tag.
//
// Each file ends Skipped (already tagged), Tagged, or Failed. A file is
// renamed only after the oracle accepts it, and the rename never replaces an
// existing file. Running the pipeline twice is a no-op the second time.
package tagging
