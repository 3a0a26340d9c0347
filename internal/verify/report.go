package verify

import (
	"fmt"

	"mangashelf/internal/runlog"
	"mangashelf/internal/scan"
	"mangashelf/internal/tag"
)

// State classifies one verified file.
type State string

const (
	StateMatch      State = "match"
	StateMismatch   State = "mismatch"
	StateParseError State = "parse_error"
	StateUnreadable State = "unreadable"
)

// Result is the verification outcome for one tagged file.
type Result struct {
	Path  string
	State State
	// RawTag is the bracket text found in the filename.
	RawTag string
	// Expected is decoded from the tag; Expected.Size is meaningful only
	// when HasSize is true.
	Expected Fields
	HasSize  bool
	// Actual is recomputed from file content.
	Actual Fields
	Err    error
}

// Fields is a size and checksum pair.
type Fields struct {
	Size  int64
	CRC32 string
}

// ExpectedText renders the tag side of the result as written in exports.
func (r Result) ExpectedText() string {
	if r.State == StateParseError {
		return fmt.Sprintf("unparseable tag %q", r.RawTag)
	}
	if r.HasSize {
		return fmt.Sprintf("Size=%d, CRC32=%s", r.Expected.Size, r.Expected.CRC32)
	}
	return "CRC32=" + r.Expected.CRC32
}

// ActualText renders the recomputed side of the result.
func (r Result) ActualText() string {
	switch r.State {
	case StateParseError:
		return "not computed"
	case StateUnreadable:
		return fmt.Sprintf("unreadable (%v)", r.Err)
	}
	if r.HasSize {
		return fmt.Sprintf("Size=%d, CRC32=%s", r.Actual.Size, r.Actual.CRC32)
	}
	return "CRC32=" + r.Actual.CRC32
}

// Counts summarises a report. Matches and Mismatches are always reported;
// parse errors and unreadable files are counted separately.
type Counts struct {
	Matches     int
	Mismatches  int
	ParseErrors int
	Unreadable  int
}

// Report is the result of one verification pass.
type Report struct {
	Root       string
	Results    []Result
	ScanErrors []scan.WalkError
	// Untagged counts candidates excluded because they carry no tag.
	Untagged int
	Log      *runlog.Log
}

// Counts tallies results by state.
func (r *Report) Counts() Counts {
	var c Counts
	for _, res := range r.Results {
		switch res.State {
		case StateMatch:
			c.Matches++
		case StateMismatch:
			c.Mismatches++
		case StateParseError:
			c.ParseErrors++
		case StateUnreadable:
			c.Unreadable++
		}
	}
	return c
}

// Problems returns every result that is not a match: mismatches, parse
// errors, and unreadable files, in processing order.
func (r *Report) Problems() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State != StateMatch {
			out = append(out, res)
		}
	}
	return out
}

// Mismatches returns only the field-level mismatches.
func (r *Report) Mismatches() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State == StateMismatch {
			out = append(out, res)
		}
	}
	return out
}

func expectedFields(t tag.Tag) Fields {
	return Fields{Size: t.Size, CRC32: t.CRCHex()}
}
