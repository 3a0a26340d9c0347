// Package notifications posts run summaries to an ntfy topic.
//
// New returns a no-op Notifier when no topic is configured, so callers never
// branch on whether notifications are enabled.
package notifications
