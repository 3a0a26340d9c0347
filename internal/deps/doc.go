// Package deps checks that the external commands mangashelf shells out to
// are installed.
package deps
