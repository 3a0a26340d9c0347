// Package workflow dispatches tag, verify and organize requests.
//
// A Runner resolves and validates the target directory once, takes a
// per-library file lock so concurrent invocations never rename the same
// files, stamps the run with a correlation ID, runs the selected pipeline
// and stores the result in the ledger.
package workflow
