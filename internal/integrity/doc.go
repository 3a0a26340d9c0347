// Package integrity wraps the external archive tester used as a pass/fail
// oracle before a checksum tag is attached to a file.
//
// Only the exit status is interpreted. Output is kept solely to enrich the
// error detail.
package integrity
