package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains scratch and log directory configuration.
type Paths struct {
	TempDir string `toml:"temp_dir"`
	LogDir  string `toml:"log_dir"`
}

// Reaper contains configuration for the external batch converter.
type Reaper struct {
	Executable        string `toml:"executable"`
	FreshInstanceFlag string `toml:"fresh_instance_flag"`
	BatchFlag         string `toml:"batch_flag"`
	OutputBuffer      int    `toml:"output_buffer"`
}

// Project points at the sources of FX chain presets.
type Project struct {
	RPPPath    string `toml:"rpp_path"`
	FXChainDir string `toml:"fxchain_dir"`
}

// Audio contains configuration for the scanned tree and its output layout.
type Audio struct {
	RootDir          string `toml:"root_dir"`
	OutputDir        string `toml:"output_dir"`
	OutputDirName    string `toml:"output_dir_name"`
	UnmatchedDirName string `toml:"unmatched_dir_name"`
}

// Output contains render settings applied uniformly to every group in a run.
type Output struct {
	Format    string  `toml:"format"`
	Normalize bool    `toml:"normalize"`
	PeakDB    float64 `toml:"peak_db"`
	AutoFade  bool    `toml:"auto_fade"`
}

// Rule maps a filename keyword to a preset. Preset may be a file path or the
// name of a preset extracted from the project file.
type Rule struct {
	Keyword string `toml:"keyword"`
	Preset  string `toml:"preset"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// History controls persistence of completed run records.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Notifications configures run-completion alerts.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for reabatch.
//
// Configuration sections by subsystem:
//   - Paths: temp presets, job descriptors, logs and the history database
//   - Reaper: executable location and command-line flags
//   - Project: RPP project file and optional FX chain folder
//   - Audio: scan root and output directory naming
//   - Output: render format, normalization and fades
//   - Rules: ordered keyword rules (first match wins)
//   - Logging: log format, level, and retention
//   - History: run history persistence
//   - Notifications: ntfy topic for run-completion alerts
type Config struct {
	Paths   Paths   `toml:"paths"`
	Reaper  Reaper  `toml:"reaper"`
	Project Project `toml:"project"`
	Audio   Audio   `toml:"audio"`
	Output  Output  `toml:"output"`
	Rules   []Rule  `toml:"rules"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`

	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reabatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the scratch and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.LogDir, c.PresetDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PresetDir is where presets extracted from the project file are written.
func (c *Config) PresetDir() string {
	return filepath.Join(c.Paths.TempDir, "temp-presets")
}

// HistoryPath is the SQLite database holding completed run records.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// LockPath is the file lock guarding against concurrent batch runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "run.lock")
}

// LogPath is the rolling application log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "reabatch.log")
}

// BaseOutputDir returns the directory that receives per-group output folders.
// An explicit audio.output_dir wins; otherwise the output folder sits inside
// the scanned root so later scans prune it.
func (c *Config) BaseOutputDir() string {
	if strings.TrimSpace(c.Audio.OutputDir) != "" {
		return c.Audio.OutputDir
	}
	if strings.TrimSpace(c.Audio.RootDir) == "" {
		return ""
	}
	return filepath.Join(c.Audio.RootDir, c.Audio.OutputDirName)
}

// UnmatchedDir returns the directory that receives files matching no rule.
func (c *Config) UnmatchedDir() string {
	base := c.BaseOutputDir()
	if base == "" {
		return ""
	}
	return filepath.Join(base, c.Audio.UnmatchedDirName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
