package testsupport

import (
	"context"
	"path/filepath"
	"sync"

	"mangashelf/internal/faults"
	"mangashelf/internal/integrity"
)

// StubOracle passes every archive except those whose base name is listed in
// Reject. Calls records every path checked.
type StubOracle struct {
	mu     sync.Mutex
	Reject map[string]bool
	Calls  []string
}

// NewStubOracle builds a StubOracle rejecting the given base names.
func NewStubOracle(reject ...string) *StubOracle {
	s := &StubOracle{Reject: make(map[string]bool, len(reject))}
	for _, name := range reject {
		s.Reject[name] = true
	}
	return s
}

// Check implements integrity.Oracle.
func (s *StubOracle) Check(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, path)
	if s.Reject[filepath.Base(path)] {
		return faults.Wrap(faults.ErrOracleFailure, "integrity", "stub", path, integrity.ErrInvalidArchive)
	}
	return nil
}

// CallCount returns the number of Check invocations.
func (s *StubOracle) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
