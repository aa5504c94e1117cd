package jobfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reabatch/internal/classify"
	"reabatch/internal/services"
)

// Format is a render output format.
type Format string

const (
	FormatWAV Format = "WAV"
	FormatMP3 Format = "MP3"
	FormatOGG Format = "OGG"
)

// ParseFormat maps a case-insensitive format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(strings.TrimSpace(s))) {
	case FormatWAV, "":
		return FormatWAV, nil
	case FormatMP3:
		return FormatMP3, nil
	case FormatOGG:
		return FormatOGG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// Fade length in seconds written when AutoFade is on.
const fadeSeconds = 0.1

// Settings are render options applied to every block of a job.
type Settings struct {
	Format    Format
	Normalize bool
	// PeakDB is only written when Normalize is set.
	PeakDB   float64
	AutoFade bool
}

// Block is one file list and its render configuration.
type Block struct {
	Files     []string
	FXChain   string
	OutPath   string
	Format    Format
	Normalize bool
	PeakDB    float64
	AutoFade  bool
}

// Job is a complete descriptor.
type Job struct {
	Blocks []Block
}

// FileCount returns the number of input files across all blocks.
func (j Job) FileCount() int {
	n := 0
	for _, b := range j.Blocks {
		n += len(b.Files)
	}
	return n
}

// Build turns non-empty groups into job blocks, creating each group's output
// folder at baseOutputDir/<key>. Groups without files are skipped. When no
// group remains Build returns services.ErrNothingToProcess.
func Build(groups []classify.Group, settings Settings, baseOutputDir string) (Job, error) {
	if settings.Format == "" {
		settings.Format = FormatWAV
	}
	var job Job
	for _, group := range groups {
		if len(group.Files) == 0 {
			continue
		}
		if strings.TrimSpace(group.PresetPath) == "" {
			return Job{}, services.Wrap(services.ErrValidation, "descriptor", "build block",
				fmt.Sprintf("group %q has no preset", group.Key), nil)
		}
		outPath := filepath.Join(baseOutputDir, group.Key)
		if err := os.MkdirAll(outPath, 0o755); err != nil {
			return Job{}, services.Wrap(services.ErrConfiguration, "descriptor", "create output dir", outPath, err)
		}
		job.Blocks = append(job.Blocks, Block{
			Files:     append([]string(nil), group.Files...),
			FXChain:   group.PresetPath,
			OutPath:   outPath,
			Format:    settings.Format,
			Normalize: settings.Normalize,
			PeakDB:    settings.PeakDB,
			AutoFade:  settings.AutoFade,
		})
	}
	if len(job.Blocks) == 0 {
		return Job{}, services.Wrap(services.ErrNothingToProcess, "descriptor", "build", "no matched files to render", nil)
	}
	return job, nil
}
