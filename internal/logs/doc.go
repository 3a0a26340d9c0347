// Package logs reads the mangashelf log file for the `logs` command.
//
// Last returns the final N lines with bounded memory, and Follow polls from a
// byte offset until the context ends. Both accept a Filter so a single run can
// be isolated by its run ID.
package logs
