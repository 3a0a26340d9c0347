package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateTagging(); err != nil {
		return err
	}
	if err := c.validateIntegrity(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateLedger(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must include at least one extension")
	}
	for _, pattern := range c.Scan.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("scan.exclude: invalid pattern %q", pattern)
		}
	}
	return nil
}

func (c *Config) validateTagging() error {
	switch c.Tagging.Format {
	case TagFormatSizeCRC, TagFormatCRC, TagFormatBare:
		return nil
	default:
		return fmt.Errorf("tagging.format must be one of %s, %s, %s (got %q)",
			TagFormatSizeCRC, TagFormatCRC, TagFormatBare, c.Tagging.Format)
	}
}

func (c *Config) validateIntegrity() error {
	if strings.TrimSpace(c.Integrity.Command) == "" {
		return errors.New("integrity.command must be set")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	switch c.Organize.FolderScheme {
	case FolderSchemeTitle, FolderSchemeDetailed:
	default:
		return fmt.Errorf("organize.folder_scheme must be %s or %s (got %q)",
			FolderSchemeTitle, FolderSchemeDetailed, c.Organize.FolderScheme)
	}
	if strings.ContainsAny(c.Organize.VerifiedSuffix, `/\`) {
		return errors.New("organize.verified_suffix must not contain path separators")
	}
	return nil
}

func (c *Config) validateLedger() error {
	if c.Ledger.Enabled && strings.TrimSpace(c.Ledger.Path) == "" {
		return errors.New("ledger.path must be set when ledger.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL (got %q)", topic)
	}
	return nil
}
