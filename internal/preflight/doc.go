// Package preflight provides readiness checks for the directories, run
// history and external commands mangashelf depends on. The status command
// prints them; nothing here changes state.
package preflight
