package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reabatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The audio root is created empty; rules are empty unless WithRules is used.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.TempDir = filepath.Join(base, "tmp")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Audio.RootDir = filepath.Join(base, "audio")
	if err := os.MkdirAll(cfgVal.Audio.RootDir, 0o755); err != nil {
		t.Fatalf("mkdir audio root: %v", err)
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

// WithRules appends keyword rules in order.
func WithRules(rules ...config.Rule) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rules = append(b.cfg.Rules, rules...)
	}
}

// WithProject points project.rpp_path at a file holding content.
func WithProject(content string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "project", "session.rpp")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.t.Fatalf("mkdir project dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.t.Fatalf("write project: %v", err)
		}
		b.cfg.Project.RPPPath = path
	}
}

// WithFakeReaper installs a shell script as the REAPER executable. The
// script receives the same arguments REAPER would.
func WithFakeReaper(script string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reaper.Executable = FakeReaper(b.t, filepath.Join(b.baseDir, "bin"), script)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.TempDir)
}
