package reaper

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"reabatch/internal/services"
)

// Candidates returns the install locations checked when no executable is
// configured, for the given GOOS.
func Candidates(goos string) []string {
	switch goos {
	case "windows":
		paths := []string{
			`C:\Program Files\REAPER (x64)\reaper.exe`,
			`C:\Program Files\REAPER (x86)\reaper.exe`,
			`C:\Program Files (x86)\REAPER (x64)\reaper.exe`,
			`C:\Program Files (x86)\REAPER (x86)\reaper.exe`,
			`C:\REAPER\reaper.exe`,
			`C:\REAPER (x64)\reaper.exe`,
		}
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			paths = append(paths,
				filepath.Join(profile, "REAPER", "reaper.exe"),
				filepath.Join(profile, "REAPER (x64)", "reaper.exe"),
			)
		}
		return paths
	case "darwin":
		return []string{
			"/Applications/REAPER.app/Contents/MacOS/REAPER",
			"/Applications/REAPER64.app/Contents/MacOS/REAPER",
		}
	default:
		paths := []string{
			"/opt/REAPER/reaper",
			"/usr/local/bin/reaper",
			"/usr/bin/reaper",
		}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, "opt", "REAPER", "reaper"))
		}
		return paths
	}
}

// Locate resolves the REAPER executable. A configured path must be usable;
// otherwise the platform candidates are tried, then PATH. It fails with
// services.ErrExternalToolMissing when nothing usable is found.
func Locate(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		if bundled := bundleExecutable(configured); bundled != "" {
			configured = bundled
		}
		if err := CheckExecutable(configured); err != nil {
			return "", services.Wrap(services.ErrExternalToolMissing, "reaper", "check executable", configured, err)
		}
		return configured, nil
	}
	for _, candidate := range Candidates(runtime.GOOS) {
		if CheckExecutable(candidate) == nil {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath("reaper"); err == nil {
		return path, nil
	}
	return "", services.Wrap(services.ErrExternalToolMissing, "reaper", "locate executable",
		"set reaper.executable or REABATCH_REAPER", nil)
}

// CheckExecutable verifies path names a regular file the current user may run.
func CheckExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s does not exist", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return checkRunnable(path)
}

// bundleExecutable maps a macOS REAPER.app bundle path to the binary inside.
func bundleExecutable(path string) string {
	if !strings.HasSuffix(strings.ToLower(filepath.Clean(path)), ".app") {
		return ""
	}
	return filepath.Join(path, "Contents", "MacOS", "REAPER")
}
