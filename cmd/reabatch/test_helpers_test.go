package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reabatch/internal/config"
	"reabatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	root       string
	chains     string
}

// setupCLITestEnv writes a config backed by temp dirs, a fake REAPER that
// records its arguments, and one standalone preset named P1.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := []testsupport.ConfigOption{
		testsupport.WithFakeReaper(testsupport.DescriptorArg + "\n" +
			`echo "rendering $job"` + "\n" +
			`printf 'converted\n' > "${job%.*}.log"`),
		testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	chains := filepath.Join(testsupport.BaseDir(cfg), "chains")
	testsupport.WritePreset(t, chains, "P1")
	cfg.Project.FXChainDir = chains

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: path,
		root:       cfg.Audio.RootDir,
		chains:     chains,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}
