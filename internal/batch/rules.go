package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reabatch/internal/classify"
	"reabatch/internal/config"
	"reabatch/internal/rpp"
	"reabatch/internal/services"
)

// LoadCatalog extracts presets from the project file, when one is set, and
// lists the FX chain folder. Extracted presets win name lookups. The bool
// reports whether the preset dir was rewritten by this call.
func LoadCatalog(ctx context.Context, cfg RunConfig, logger *slog.Logger) (*rpp.Catalog, bool, error) {
	var extracted []rpp.Preset
	didExtract := false
	if strings.TrimSpace(cfg.ProjectPath) != "" {
		presets, err := rpp.NewExtractor(cfg.PresetDir, logger).Extract(ctx, cfg.ProjectPath)
		if err != nil {
			return nil, true, err
		}
		extracted = presets
		didExtract = true
	} else {
		// Presets left by an earlier "presets extract" remain usable.
		existing, err := rpp.ListFolder(cfg.PresetDir)
		if err != nil {
			return nil, false, services.Wrap(services.ErrConfiguration, "presets", "list preset dir", cfg.PresetDir, err)
		}
		extracted = existing
	}
	folder, err := rpp.ListFolder(cfg.FXChainDir)
	if err != nil {
		return nil, didExtract, services.Wrap(services.ErrConfiguration, "presets", "list fx chain folder", cfg.FXChainDir, err)
	}
	return rpp.NewCatalog(extracted, folder), didExtract, nil
}

// ResolveRules maps each rule's preset reference to a file path. Every rule
// needs a keyword and a preset that exists in catalog.
func ResolveRules(specs []RuleSpec, catalog *rpp.Catalog) ([]classify.Rule, error) {
	if len(specs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "rules", "resolve", "no rules configured", nil)
	}
	rules := make([]classify.Rule, 0, len(specs))
	for i, spec := range specs {
		keyword := strings.TrimSpace(spec.Keyword)
		if keyword == "" {
			return nil, services.Wrap(services.ErrValidation, "rules", "resolve",
				fmt.Sprintf("rule %d has no keyword", i+1), nil)
		}
		if err := config.CheckKeyword(keyword); err != nil {
			return nil, services.Wrap(services.ErrValidation, "rules", "resolve",
				fmt.Sprintf("rule %d", i+1), err)
		}
		var (
			path string
			ok   bool
		)
		if ref := strings.TrimSpace(spec.Preset); ref != "" {
			path, ok = catalog.Resolve(ref)
			if !ok {
				return nil, services.Wrap(services.ErrValidation, "rules", "resolve",
					fmt.Sprintf("rule %d (%s): preset %q not found", i+1, keyword, ref), nil)
			}
		} else {
			path, ok = catalog.ForKeyword(keyword)
			if !ok {
				return nil, services.Wrap(services.ErrValidation, "rules", "resolve",
					fmt.Sprintf("rule %d (%s): no preset selected and none named %q", i+1, keyword, keyword), nil)
			}
		}
		rules = append(rules, classify.Rule{Keyword: keyword, PresetPath: path})
	}
	return rules, nil
}
