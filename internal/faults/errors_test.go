package faults_test

import (
	"errors"
	"strings"
	"testing"

	"mangashelf/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("permission denied")
	err := faults.Wrap(faults.ErrIO, "checksum", "read", "/lib/a.cbz", base)
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"io error", "checksum", "read", "/lib/a.cbz", "permission denied"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrTagParse, "", "", "", nil)
	if err.Error() != "tag parse error: failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{faults.Wrap(faults.ErrOracleFailure, "tagging", "check", "", nil), "oracle_failure"},
		{faults.Wrap(faults.ErrTagParse, "verify", "decode", "", nil), "tag_parse"},
		{faults.Wrap(faults.ErrConflict, "tagging", "rename", "", nil), "conflict"},
		{faults.Wrap(faults.ErrBusy, "workflow", "lock", "", nil), "busy"},
		{faults.Wrap(faults.ErrIO, "checksum", "open", "", errors.New("x")), "io"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range tests {
		if got := faults.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
