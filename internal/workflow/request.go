package workflow

import (
	"fmt"
	"strings"
)

// Operation selects which pipeline a request runs.
type Operation string

const (
	OpTag      Operation = "tag"
	OpVerify   Operation = "verify"
	OpOrganize Operation = "organize"
)

// ParseOperation accepts an operation name in any case.
func ParseOperation(value string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(value))); op {
	case OpTag, OpVerify, OpOrganize:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q (want tag, verify, or organize)", value)
	}
}

// Request describes one dispatched run.
type Request struct {
	Operation Operation
	// Directory is the library root; empty means paths.library_dir.
	Directory string
	// ExportPath receives verification problems when set.
	ExportPath string
	// DryRun plans tag or organize work without renaming anything.
	DryRun bool
}
