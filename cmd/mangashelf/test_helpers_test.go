package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"mangashelf/internal/config"
	"mangashelf/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	library    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		library:    cfg.Paths.LibraryDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--quiet"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
library_dir = %q
state_dir = %q
log_dir = %q

[integrity]
command = %q
args = ["t"]

[ledger]
enabled = %t
path = %q

[logging]
retention_days = 0
`,
		cfg.Paths.LibraryDir,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Integrity.Command,
		cfg.Ledger.Enabled,
		cfg.Ledger.Path,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeArchive(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteBytes(t, path, []byte(content))
	return path
}
