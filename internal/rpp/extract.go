package rpp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reabatch/internal/logging"
	"reabatch/internal/services"
	"reabatch/internal/staging"
	"reabatch/internal/textutil"
)

// PresetExt is the extension REAPER expects for standalone FX chain files.
const PresetExt = ".RfxChain"

// Preset is an FX chain available to rules.
type Preset struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Extractor writes presets found in a project file into a scratch directory.
type Extractor struct {
	dir    string
	logger *slog.Logger
}

// NewExtractor returns an extractor that owns dir. Every Extract call clears
// dir first, so presets from an earlier parse never survive a re-parse.
func NewExtractor(dir string, logger *slog.Logger) *Extractor {
	return &Extractor{dir: dir, logger: logging.NewComponentLogger(logger, "presets")}
}

// Dir returns the directory presets are written to.
func (e *Extractor) Dir() string {
	return e.dir
}

// Extract parses projectPath and writes one preset file per qualifying track.
// It fails with services.ErrParse when the file cannot be read or holds no
// track with a non-empty FX chain.
func (e *Extractor) Extract(ctx context.Context, projectPath string) ([]Preset, error) {
	logger := logging.WithContext(ctx, e.logger)

	projectPath = strings.TrimSpace(projectPath)
	if projectPath == "" {
		return nil, services.Wrap(services.ErrParse, "presets", "read project", "project file path is empty", nil)
	}
	if err := staging.ResetDir(e.dir); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "presets", "prepare preset dir", "", err)
	}

	data, err := os.ReadFile(projectPath)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "presets", "read project", projectPath, err)
	}

	chains := ParseChains(string(data))
	if len(chains) == 0 {
		return nil, services.Wrap(services.ErrParse, "presets", "parse project",
			fmt.Sprintf("no tracks with FX chains found in %s", filepath.Base(projectPath)), nil)
	}

	presets := make([]Preset, 0, len(chains))
	written := make(map[string]string, len(chains))
	for _, chain := range chains {
		token := textutil.SanitizePresetName(chain.Name)
		path := filepath.Join(e.dir, token+PresetExt)
		if prev, dup := written[path]; dup {
			logger.Info("preset file name collision; later track overwrites earlier",
				logging.String("preset", chain.Name),
				logging.String("previous", prev),
				logging.String("path", path),
				logging.String(logging.FieldEventType, "preset_name_collision"),
			)
		}
		if err := os.WriteFile(path, []byte(chain.Preset()), 0o644); err != nil {
			return nil, services.Wrap(services.ErrParse, "presets", "write preset", chain.Name, err)
		}
		written[path] = chain.Name
		presets = append(presets, Preset{Name: chain.Name, Path: path})
	}

	logger.Info("presets extracted",
		logging.String("project", projectPath),
		logging.Int("count", len(presets)),
		logging.String(logging.FieldEventType, "presets_extracted"),
	)
	return presets, nil
}
