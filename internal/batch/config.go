package batch

import (
	"fmt"
	"path/filepath"

	"reabatch/internal/config"
	"reabatch/internal/jobfile"
	"reabatch/internal/scanner"
)

// RuleSpec is a user-authored rule before its preset is resolved. Preset may
// be a path or a preset name; empty selects the preset named like Keyword.
type RuleSpec struct {
	Keyword string
	Preset  string
}

// ReaperSettings configures the converter invocation.
type ReaperSettings struct {
	Executable        string
	FreshInstanceFlag string
	BatchFlag         string
	OutputBuffer      int
}

// RunConfig is everything a run needs. It is read-only for the duration of
// the run.
type RunConfig struct {
	// ProjectPath is an optional .rpp file whose FX chains are extracted into
	// PresetDir before rules are resolved.
	ProjectPath string
	PresetDir   string
	// FXChainDir optionally holds standalone .RfxChain files.
	FXChainDir string

	RootDir          string
	OutputDir        string
	OutputDirName    string
	UnmatchedDirName string
	TempDir          string

	Reaper ReaperSettings
	Rules  []RuleSpec
	Output jobfile.Settings
}

// BaseOutputDir returns the folder receiving per-group output.
func (c RunConfig) BaseOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return joinIfSet(c.RootDir, c.OutputDirName)
}

// ScanExclusions prunes both the output folder name and the resolved output
// folder, so an explicit output_dir inside the root is never rescanned.
func (c RunConfig) ScanExclusions() scanner.Exclusions {
	return scanner.Exclusions{Name: c.OutputDirName, Dirs: []string{c.BaseOutputDir()}}
}

// UnmatchedDir returns the folder receiving files that matched no rule.
func (c RunConfig) UnmatchedDir() string {
	return joinIfSet(c.BaseOutputDir(), c.UnmatchedDirName)
}

// FromConfig builds a RunConfig from loaded configuration.
func FromConfig(cfg *config.Config) (RunConfig, error) {
	format, err := jobfile.ParseFormat(cfg.Output.Format)
	if err != nil {
		return RunConfig{}, fmt.Errorf("output.format: %w", err)
	}
	rules := make([]RuleSpec, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, RuleSpec{Keyword: r.Keyword, Preset: r.Preset})
	}
	return RunConfig{
		ProjectPath:      cfg.Project.RPPPath,
		PresetDir:        cfg.PresetDir(),
		FXChainDir:       cfg.Project.FXChainDir,
		RootDir:          cfg.Audio.RootDir,
		OutputDir:        cfg.Audio.OutputDir,
		OutputDirName:    cfg.Audio.OutputDirName,
		UnmatchedDirName: cfg.Audio.UnmatchedDirName,
		TempDir:          cfg.Paths.TempDir,
		Reaper: ReaperSettings{
			Executable:        cfg.Reaper.Executable,
			FreshInstanceFlag: cfg.Reaper.FreshInstanceFlag,
			BatchFlag:         cfg.Reaper.BatchFlag,
			OutputBuffer:      cfg.Reaper.OutputBuffer,
		},
		Rules: rules,
		Output: jobfile.Settings{
			Format:    format,
			Normalize: cfg.Output.Normalize,
			PeakDB:    cfg.Output.PeakDB,
			AutoFade:  cfg.Output.AutoFade,
		},
	}, nil
}

func joinIfSet(base, name string) string {
	if base == "" || name == "" {
		return base
	}
	return filepath.Join(base, name)
}
