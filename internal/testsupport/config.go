package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"nropster/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The directories exist, polling is fast, and fetch pacing is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.DestinationDir = filepath.Join(base, "dest")
	cfgVal.Paths.EditedDir = filepath.Join(base, "edited")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Device.Address = "127.0.0.1"
	cfgVal.Device.MediaAccessKey = "0123456789"
	cfgVal.Workflow.PollInterval = 1
	cfgVal.Workflow.FetchPacing = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithDevice points the config at a recorder address, typically an httptest
// server URL.
func WithDevice(address, mak string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Device.Address = address
		b.cfg.Device.MediaAccessKey = mak
	}
}

// WithSelection sets the include/exclude patterns and force flag.
func WithSelection(include, exclude string, force bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Selection.Include = include
		b.cfg.Selection.Exclude = exclude
		b.cfg.Selection.Force = force
	}
}

// WithHandoff selects the stage hand-off mode.
func WithHandoff(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.Handoff = mode
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default decoder and
// transcoder are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"tivodecode", "ffmpeg"}
		}
		for _, name := range names {
			writeStub(b, name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithScript writes an executable shell script named name onto PATH.
func WithScript(name, body string) ConfigOption {
	return func(b *configBuilder) {
		writeStub(b, name, "#!/bin/sh\n"+body+"\n")
	}
}

func writeStub(b *configBuilder, name, script string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	path := os.Getenv("PATH")
	if filepath.SplitList(path)[0] != binDir {
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+path)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
