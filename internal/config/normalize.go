package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Scan.Extensions = normalizeExtensions(c.Scan.Extensions, defaultArchiveExtensions())
	c.Scan.Exclude = normalizeList(c.Scan.Exclude)
	c.normalizeTagging()
	c.normalizeIntegrity()
	c.normalizeOrganize()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		if value, ok := os.LookupEnv(libraryDirEnvironmentKey); ok {
			c.Paths.LibraryDir = strings.TrimSpace(value)
		}
	}
	if c.Paths.LibraryDir, err = expandPath(strings.TrimSpace(c.Paths.LibraryDir)); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTagging() {
	c.Tagging.Format = strings.ToLower(strings.TrimSpace(c.Tagging.Format))
	if c.Tagging.Format == "" {
		c.Tagging.Format = defaultTagFormat
	}
}

func (c *Config) normalizeIntegrity() {
	c.Integrity.Command = strings.TrimSpace(c.Integrity.Command)
	if c.Integrity.Command == "" {
		c.Integrity.Command = defaultIntegrityCommand
	}
	args := make([]string, 0, len(c.Integrity.Args))
	for _, arg := range c.Integrity.Args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Integrity.Args = args
	if c.Integrity.TimeoutSeconds < 0 {
		c.Integrity.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeOrganize() {
	c.Organize.Extensions = normalizeExtensions(c.Organize.Extensions, defaultOrganizeExtensions())
	c.Organize.FolderScheme = strings.ToLower(strings.TrimSpace(c.Organize.FolderScheme))
	if c.Organize.FolderScheme == "" {
		c.Organize.FolderScheme = defaultFolderScheme
	}
	c.Organize.VerifiedSuffix = strings.TrimSpace(c.Organize.VerifiedSuffix)
}

func (c *Config) normalizeLedger() error {
	var err error
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// normalizeExtensions trims entries and adds a leading dot. Case is kept
// because candidate matching is case-sensitive.
func normalizeExtensions(values, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.TrimSpace(value)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, exists := seen[ext]; exists {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
