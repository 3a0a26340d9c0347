package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mangashelf/internal/config"
	"mangashelf/internal/ledger"
)

const userAgent = "mangashelf/0.1"

// RunSummary describes a finished run.
type RunSummary struct {
	RunID     string
	Operation string
	Root      string
	DryRun    bool
	Status    string
	Counts    ledger.Counts
	Duration  time.Duration
	Err       error
}

// Problems counts files that need attention.
func (s RunSummary) Problems() int {
	c := s.Counts
	return c.Failed + c.Mismatches + c.ParseErrors + c.Unreadable
}

// Notifier delivers run summaries.
type Notifier interface {
	RunFinished(ctx context.Context, summary RunSummary) error
	Test(ctx context.Context) error
}

// New builds an ntfy notifier when a topic is configured and a no-op
// notifier otherwise.
func New(cfg *config.Config) Notifier {
	if cfg == nil {
		return Noop{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Noop{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfy{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		onlyProblems: cfg.Notifications.OnlyProblems,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfy struct {
	endpoint     string
	client       *http.Client
	onlyProblems bool
}

func (n *ntfy) RunFinished(ctx context.Context, summary RunSummary) error {
	if n.onlyProblems && summary.Status == ledger.StatusCompleted && summary.Problems() == 0 {
		return nil
	}
	return n.send(ctx, formatSummary(summary))
}

func (n *ntfy) Test(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "mangashelf - Test",
		message:  "Notification delivery works",
		tags:     []string{"mangashelf", "test"},
		priority: "low",
	})
}

func formatSummary(s RunSummary) payload {
	op := strings.TrimSpace(s.Operation)
	label := operationTitle(op)
	if s.DryRun {
		label += " (dry run)"
	}

	data := payload{tags: []string{"mangashelf", op, s.Status}}
	switch {
	case s.Status == ledger.StatusCancelled:
		data.title = "mangashelf - " + label + " cancelled"
	case s.Status == ledger.StatusFailed:
		data.title = "mangashelf - " + label + " failed"
		data.priority = "high"
	case s.Problems() > 0:
		data.title = "mangashelf - " + label + " complete (with problems)"
		data.priority = "high"
	default:
		data.title = "mangashelf - " + label + " complete"
	}

	var b strings.Builder
	b.WriteString(countsLine(op, s.Counts))
	if s.Root != "" {
		fmt.Fprintf(&b, "\nDirectory: %s", s.Root)
	}
	if d := s.Duration.Round(time.Second); d > 0 {
		fmt.Fprintf(&b, "\nDuration: %s", d)
	}
	if s.Err != nil {
		fmt.Fprintf(&b, "\nError: %s", strings.TrimSpace(s.Err.Error()))
	}
	data.message = b.String()
	return data
}

func operationTitle(op string) string {
	switch op {
	case "tag":
		return "Tagging"
	case "verify":
		return "Verification"
	case "organize":
		return "Organize"
	default:
		return "Run"
	}
}

func countsLine(op string, c ledger.Counts) string {
	switch op {
	case "tag":
		return fmt.Sprintf("Tagged %d, skipped %d, failed %d", c.Tagged, c.Skipped, c.Failed)
	case "verify":
		line := fmt.Sprintf("%d matched, %d mismatched", c.Matches, c.Mismatches)
		if c.ParseErrors > 0 {
			line += fmt.Sprintf(", %d unparseable", c.ParseErrors)
		}
		if c.Unreadable > 0 {
			line += fmt.Sprintf(", %d unreadable", c.Unreadable)
		}
		return line
	case "organize":
		return fmt.Sprintf("Moved %d, renamed %d folders, skipped %d, failed %d", c.Moved, c.Renamed, c.Skipped, c.Failed)
	default:
		return ""
	}
}

func (n *ntfy) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Noop discards every notification.
type Noop struct{}

func (Noop) RunFinished(context.Context, RunSummary) error { return nil }
func (Noop) Test(context.Context) error                    { return nil }
