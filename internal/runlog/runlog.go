// Package runlog keeps the ordered, human-readable processing log of one run.
//
// Entries are append-only and never parsed back. Each entry is mirrored to
// the structured logger at debug level so the persistent log file carries
// the same narrative as the CLI output.
package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"mangashelf/internal/logging"
)

// Log is an append-only list of lines.
type Log struct {
	mu      sync.Mutex
	lines   []string
	logger  *slog.Logger
	observe func(string)
}

// New returns an empty Log mirroring to logger (nil discards).
func New(logger *slog.Logger) *Log {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Log{logger: logger}
}

// OnAppend registers fn to receive each line as it is added. It is used by
// the CLI to stream entries while a run is in progress.
func (l *Log) OnAppend(fn func(string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observe = fn
}

// Add appends one line. Adding to a nil Log is a no-op.
func (l *Log) Add(line string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.lines = append(l.lines, line)
	observe := l.observe
	l.mu.Unlock()

	l.logger.Debug(line, logging.String(logging.FieldEventType, "processing_log"))
	if observe != nil {
		observe(line)
	}
}

// Addf appends a formatted line.
func (l *Log) Addf(format string, args ...any) {
	if l == nil {
		return
	}
	l.Add(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the entries in insertion order.
func (l *Log) Lines() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// WriteTo writes every entry followed by a newline.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, line := range l.Lines() {
		n, err := fmt.Fprintln(w, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
