package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reabatch/internal/batch"
	"reabatch/internal/config"
	"reabatch/internal/jobfile"
)

// runFlags overrides configuration for one invocation of run or preview.
type runFlags struct {
	root      string
	project   string
	fxChains  string
	outputDir string
	reaper    string
	format    string
	normalize bool
	peakDB    float64
	autoFade  bool
	rules     []string
}

func (f *runFlags) bindSelection(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.project, "project", "", "Project file to extract presets from (overrides project.rpp_path)")
	cmd.Flags().StringVar(&f.fxChains, "fxchains", "", "Folder of standalone presets (overrides project.fxchain_dir)")
	cmd.Flags().StringArrayVarP(&f.rules, "rule", "r", nil, "Rule as keyword=preset, repeatable; replaces configured rules")
}

func (f *runFlags) bindRender(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Base output directory (overrides audio.output_dir)")
	cmd.Flags().StringVar(&f.reaper, "reaper", "", "REAPER executable (overrides reaper.executable)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: wav, mp3 or ogg")
	cmd.Flags().BoolVar(&f.normalize, "normalize", false, "Normalize output peaks")
	cmd.Flags().Float64Var(&f.peakDB, "peak-db", 0, "Normalization target in dBFS")
	cmd.Flags().BoolVar(&f.autoFade, "auto-fade", false, "Apply short fades at both ends")
}

// apply builds the run configuration from cfg plus any flags the user set.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) (batch.RunConfig, error) {
	rc, err := batch.FromConfig(cfg)
	if err != nil {
		return batch.RunConfig{}, err
	}
	root, err := resolveRoot(cfg, args)
	if err != nil {
		return batch.RunConfig{}, err
	}
	rc.RootDir = root

	for _, p := range []struct {
		flag  string
		value string
		dst   *string
	}{
		{"project", f.project, &rc.ProjectPath},
		{"fxchains", f.fxChains, &rc.FXChainDir},
		{"output-dir", f.outputDir, &rc.OutputDir},
		{"reaper", f.reaper, &rc.Reaper.Executable},
	} {
		if !changed(cmd, p.flag) {
			continue
		}
		expanded, err := config.ExpandPath(strings.TrimSpace(p.value))
		if err != nil {
			return batch.RunConfig{}, fmt.Errorf("--%s: %w", p.flag, err)
		}
		*p.dst = expanded
	}

	if changed(cmd, "format") {
		format, err := jobfile.ParseFormat(f.format)
		if err != nil {
			return batch.RunConfig{}, fmt.Errorf("--format: %w", err)
		}
		rc.Output.Format = format
	}
	if changed(cmd, "normalize") {
		rc.Output.Normalize = f.normalize
	}
	if changed(cmd, "peak-db") {
		if f.peakDB > 0 {
			return batch.RunConfig{}, fmt.Errorf("--peak-db must be <= 0, got %g", f.peakDB)
		}
		rc.Output.PeakDB = f.peakDB
		rc.Output.Normalize = true
	}
	if changed(cmd, "auto-fade") {
		rc.Output.AutoFade = f.autoFade
	}

	if len(f.rules) > 0 {
		specs, err := parseRuleFlags(f.rules)
		if err != nil {
			return batch.RunConfig{}, err
		}
		rc.Rules = specs
	}
	return rc, nil
}

func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Lookup(name) != nil && cmd.Flags().Changed(name)
}

// parseRuleFlags reads keyword=preset pairs. A bare keyword selects the
// preset named like it.
func parseRuleFlags(values []string) ([]batch.RuleSpec, error) {
	specs := make([]batch.RuleSpec, 0, len(values))
	for _, v := range values {
		keyword, preset, _ := strings.Cut(v, "=")
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return nil, fmt.Errorf("--rule %q: keyword is empty", v)
		}
		specs = append(specs, batch.RuleSpec{Keyword: keyword, Preset: strings.TrimSpace(preset)})
	}
	return specs, nil
}
