package config

import (
	"fmt"
	"os"
	"strings"

	"reabatch/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeReaper(); err != nil {
		return err
	}
	if err := c.normalizeProject(); err != nil {
		return err
	}
	if err := c.normalizeAudio(); err != nil {
		return err
	}
	c.normalizeOutput()
	if err := c.normalizeRules(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeReaper() error {
	c.Reaper.Executable = strings.TrimSpace(c.Reaper.Executable)
	if c.Reaper.Executable == "" {
		if value, ok := os.LookupEnv("REABATCH_REAPER"); ok {
			c.Reaper.Executable = strings.TrimSpace(value)
		}
	}
	if c.Reaper.Executable != "" {
		var err error
		if c.Reaper.Executable, err = expandPath(c.Reaper.Executable); err != nil {
			return fmt.Errorf("reaper.executable: %w", err)
		}
	}
	c.Reaper.FreshInstanceFlag = strings.TrimSpace(c.Reaper.FreshInstanceFlag)
	c.Reaper.BatchFlag = strings.TrimSpace(c.Reaper.BatchFlag)
	if c.Reaper.BatchFlag == "" {
		c.Reaper.BatchFlag = defaultBatchFlag
	}
	if c.Reaper.OutputBuffer <= 0 {
		c.Reaper.OutputBuffer = defaultOutputBuffer
	}
	return nil
}

func (c *Config) normalizeProject() error {
	var err error
	if c.Project.RPPPath, err = expandPath(strings.TrimSpace(c.Project.RPPPath)); err != nil {
		return fmt.Errorf("project.rpp_path: %w", err)
	}
	if c.Project.FXChainDir, err = expandPath(strings.TrimSpace(c.Project.FXChainDir)); err != nil {
		return fmt.Errorf("project.fxchain_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() error {
	var err error
	if c.Audio.RootDir, err = expandPath(strings.TrimSpace(c.Audio.RootDir)); err != nil {
		return fmt.Errorf("audio.root_dir: %w", err)
	}
	if c.Audio.OutputDir, err = expandPath(strings.TrimSpace(c.Audio.OutputDir)); err != nil {
		return fmt.Errorf("audio.output_dir: %w", err)
	}
	c.Audio.OutputDirName = strings.TrimSpace(c.Audio.OutputDirName)
	if c.Audio.OutputDirName == "" {
		c.Audio.OutputDirName = defaultOutputDirName
	}
	c.Audio.UnmatchedDirName = strings.TrimSpace(c.Audio.UnmatchedDirName)
	if c.Audio.UnmatchedDirName == "" {
		c.Audio.UnmatchedDirName = defaultUnmatchedDirName
	}
	return nil
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}

func (c *Config) normalizeRules() error {
	for i := range c.Rules {
		c.Rules[i].Keyword = textutil.FoldKeyword(c.Rules[i].Keyword)
		preset := strings.TrimSpace(c.Rules[i].Preset)
		if strings.HasPrefix(preset, "~") {
			expanded, err := expandPath(preset)
			if err != nil {
				return fmt.Errorf("rules[%d].preset: %w", i, err)
			}
			preset = expanded
		}
		c.Rules[i].Preset = preset
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
