package integrity

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mangashelf/internal/faults"
)

// ErrInvalidArchive reports that the tester ran and rejected the archive.
var ErrInvalidArchive = errors.New("archive failed integrity test")

// Oracle decides whether an archive is structurally sound.
type Oracle interface {
	Check(ctx context.Context, path string) error
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, path string) error

// Check calls f.
func (f OracleFunc) Check(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (output string, err error)
}

// Option configures the tester.
type Option func(*Tester)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(t *Tester) {
		if exec != nil {
			t.exec = exec
		}
	}
}

// Tester runs an external command such as "7z t <path>" and treats exit
// status zero as a pass.
type Tester struct {
	binary  string
	args    []string
	timeout time.Duration
	exec    Executor
}

// NewTester constructs a Tester. The archive path is appended after args.
func NewTester(binary string, args []string, timeoutSeconds int, opts ...Option) (*Tester, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("integrity command required")
	}
	t := &Tester{
		binary:  binary,
		args:    append([]string(nil), args...),
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Binary returns the configured command name.
func (t *Tester) Binary() string {
	return t.binary
}

// Check runs the tester against path. Every failure, including a tester
// that cannot be started or times out, is reported as faults.ErrOracleFailure.
func (t *Tester) Check(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), t.args...), path)
	output, err := t.exec.Run(ctx, t.binary, args)
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		cause := fmt.Errorf("%w (exit status %d)", ErrInvalidArchive, exitErr.ExitCode())
		if detail := lastLine(output); detail != "" {
			cause = fmt.Errorf("%w: %s", cause, detail)
		}
		return faults.Wrap(faults.ErrOracleFailure, "integrity", t.binary, path, cause)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return faults.Wrap(faults.ErrOracleFailure, "integrity", t.binary, "timed out after "+t.timeout.String(), err)
	default:
		return faults.Wrap(faults.ErrOracleFailure, "integrity", t.binary, "run tester", err)
	}
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var out tailBuffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// tailBuffer keeps the last tailLimit bytes written to it.
type tailBuffer struct {
	data []byte
}

const tailLimit = 4096

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	if len(b.data) > tailLimit {
		b.data = append(b.data[:0], b.data[len(b.data)-tailLimit:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.data)
}
