package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		return errors.New("paths.temp_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAudio() error {
	for key, name := range map[string]string{
		"audio.output_dir_name":    c.Audio.OutputDirName,
		"audio.unmatched_dir_name": c.Audio.UnmatchedDirName,
	} {
		if !isFolderName(name) {
			return fmt.Errorf("%s must be a single directory name, got %q", key, name)
		}
	}
	return nil
}

func (c *Config) validateOutput() error {
	switch c.Output.Format {
	case "wav", "mp3", "ogg":
	default:
		return fmt.Errorf("output.format must be one of wav, mp3, ogg (got %q)", c.Output.Format)
	}
	if c.Output.Normalize {
		if math.IsNaN(c.Output.PeakDB) || math.IsInf(c.Output.PeakDB, 0) {
			return errors.New("output.peak_db must be a finite number when output.normalize is true")
		}
		if c.Output.PeakDB > 0 {
			return errors.New("output.peak_db must be <= 0 when output.normalize is true")
		}
	}
	return nil
}

func (c *Config) validateRules() error {
	for i, rule := range c.Rules {
		if rule.Keyword == "" {
			return fmt.Errorf("rules[%d].keyword must be set", i)
		}
		if err := CheckKeyword(rule.Keyword); err != nil {
			return fmt.Errorf("rules[%d].keyword: %w", i, err)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

// CheckKeyword rejects keywords that cannot name an output folder. The
// keyword becomes the group folder, so "." or ".." would write into or above
// the output directory.
func CheckKeyword(keyword string) error {
	if !isFolderName(keyword) {
		return fmt.Errorf("%q cannot be used as a folder name", keyword)
	}
	return nil
}

func isFolderName(name string) bool {
	return !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
