package preflight

import (
	"context"

	"mangashelf/internal/config"
	"mangashelf/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem and ledger checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	} else {
		results = append(results, Result{Name: "Library directory", Detail: "not configured (pass DIR to each command)"})
	}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Ledger.Enabled {
		results = append(results, CheckLedger(ctx, cfg.Ledger.Path))
	} else {
		results = append(results, Result{Name: "Ledger", Passed: true, Detail: "Disabled"})
	}
	return results
}

// CheckSystemDeps evaluates the external commands required by cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "Integrity tester",
			Command:     cfg.Integrity.Command,
			Description: "Required for tagging (archive test before a tag is written)",
		},
	})
}
