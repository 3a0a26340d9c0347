// Package ledger keeps the history of tag, verify and organize runs in
// SQLite.
//
// Each run is stored with its counts and timings alongside one row per
// processed file, so earlier results can be listed and inspected after the
// terminal output is gone. The schema is versioned; a ledger written by an
// incompatible version is rejected with ErrSchemaMismatch rather than
// migrated.
package ledger
