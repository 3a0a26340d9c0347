// Package logging assembles structured slog loggers and formatting helpers used
// across mangashelf.
//
// It owns the console and JSON handlers, the stderr plus log-file tee, and
// context helpers that stamp every line of a run with its run ID and
// operation. A no-op logger is provided for tests and for wiring code that
// cannot fail.
package logging
