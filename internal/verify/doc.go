// Package verify re-checks tagged archives against the checksum and size
// embedded in their names.
//
// Every tagged file ends as Match, Mismatch, ParseError (a tag-shaped token
// that does not decode), or Unreadable. Files without a tag are excluded
// from all counts. Problems can be exported as plain-text blocks.
package verify
