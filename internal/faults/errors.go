package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO marks a file that could not be opened or read.
	ErrIO = errors.New("io error")
	// ErrOracleFailure marks an archive the integrity tester rejected.
	ErrOracleFailure = errors.New("archive integrity failure")
	// ErrTagParse marks a tag-shaped filename token that does not decode.
	ErrTagParse = errors.New("tag parse error")
	// ErrExportWrite marks a mismatch export that could not be written.
	ErrExportWrite = errors.New("export write error")
	// ErrInvalidInput marks bad top-level input such as a missing directory.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrConflict marks a rename or move whose target already exists.
	ErrConflict = errors.New("target exists")
	// ErrBusy marks a library already locked by another run.
	ErrBusy = errors.New("library busy")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker so callers can classify it with errors.Is. The
// marker should be one of the exported sentinels above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short stable label for the marker carried by err. Reports
// and the ledger store it next to each failed file.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOracleFailure):
		return "oracle_failure"
	case errors.Is(err, ErrTagParse):
		return "tag_parse"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrExportWrite):
		return "export_write"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
