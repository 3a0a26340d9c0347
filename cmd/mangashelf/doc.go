// Command mangashelf tags comic and manga archives with content checksums,
// verifies them later, and sorts them into per-title folders.
//
// Run "mangashelf config init" to write a sample configuration, then
// "mangashelf status" to check that the integrity tester and directories
// are ready.
package main
