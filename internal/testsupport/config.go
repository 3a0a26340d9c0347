package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mangashelf/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The library directory is created; state and log directories are not.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	cfgVal.Logging.RetentionDays = 0

	if err := os.MkdirAll(cfgVal.Paths.LibraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTagFormat overrides the tag encoding on the test config.
func WithTagFormat(format string, acceptLegacy bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tagging.Format = format
		b.cfg.Tagging.AcceptLegacy = acceptLegacy
	}
}

// WithLedgerDisabled turns off run history.
func WithLedgerDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithIntegrityCommand points the integrity tester at name with no extra args.
func WithIntegrityCommand(name string, args ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Integrity.Command = name
		b.cfg.Integrity.Args = args
	}
}

// WithStubbedBinaries writes stub executables that exit 0 and prepends them
// to PATH. If names is empty, the default integrity command is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Integrity.Command}
		}
		for _, name := range names {
			WriteStubBinary(b.t, b.binDir(), name, "#!/bin/sh\nexit 0\n")
		}
		prependPath(b.t, b.binDir())
	}
}

// WithRejectingBinary stubs name with a script that exits 2 for any argument
// containing marker and 0 otherwise.
func WithRejectingBinary(name, marker string) ConfigOption {
	return func(b *configBuilder) {
		script := "#!/bin/sh\nfor arg in \"$@\"; do\n  case \"$arg\" in\n    *" + marker + "*) echo \"ERROR: Data Error\" >&2; exit 2 ;;\n  esac\ndone\nexit 0\n"
		WriteStubBinary(b.t, b.binDir(), name, script)
		prependPath(b.t, b.binDir())
	}
}

func (b *configBuilder) binDir() string {
	dir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return dir
}

// WriteStubBinary writes an executable shell script into dir.
func WriteStubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

func prependPath(t testing.TB, dir string) {
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
