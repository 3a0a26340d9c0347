// Package faults defines the error taxonomy shared by the tagging,
// verification, and organize pipelines.
//
// Per-file problems are wrapped with one of the sentinel markers and stored
// in reports rather than returned, so a single unreadable or corrupt archive
// never stops a run. Only invalid top-level input and configuration problems
// surface as returned errors.
package faults
