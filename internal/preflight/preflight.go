package preflight

import (
	"context"

	"reabatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
	// Optional checks report problems without failing doctor.
	Optional bool `json:"optional,omitempty"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks for unset optional paths are skipped.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReaper(cfg.Reaper.Executable),
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if cfg.Audio.RootDir != "" {
		results = append(results, CheckDirectoryAccess("Audio root", cfg.Audio.RootDir))
	} else {
		results = append(results, Result{Name: "Audio root", Detail: "audio.root_dir not set", Optional: true})
	}

	if cfg.Project.RPPPath != "" {
		results = append(results, CheckProjectFile(ctx, cfg.Project.RPPPath))
	}
	if cfg.Project.FXChainDir != "" {
		results = append(results, CheckFXChainDir(cfg.Project.FXChainDir))
	}

	results = append(results, CheckRules(len(cfg.Rules)))
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
