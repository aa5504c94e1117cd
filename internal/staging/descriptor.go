package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"reabatch/internal/logging"
)

// Descriptor is a job descriptor written to disk for one REAPER invocation.
type Descriptor struct {
	Path    string
	LogPath string
}

// WriteDescriptor writes content to a uniquely named descriptor file in dir.
// The runID is embedded in the file name when present.
func WriteDescriptor(dir, runID string, content []byte) (*Descriptor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create descriptor dir: %w", err)
	}
	id := strings.TrimSpace(runID)
	if id == "" {
		id = uuid.NewString()
	}
	path := filepath.Join(dir, DescriptorPrefix+id+".txt")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("write descriptor: %w", err)
	}
	return &Descriptor{Path: path, LogPath: LogPathFor(path)}, nil
}

// LogPathFor returns the log companion REAPER writes next to a descriptor:
// the descriptor path with its extension replaced by ".log".
func LogPathFor(descriptorPath string) string {
	return strings.TrimSuffix(descriptorPath, filepath.Ext(descriptorPath)) + ".log"
}

// ReadLog returns the companion log text. A missing log is not an error and
// yields ok=false.
func (d *Descriptor) ReadLog() (string, bool, error) {
	data, err := os.ReadFile(d.LogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// Remove deletes the descriptor and its log. Failures are logged and returned
// but never fatal.
func (d *Descriptor) Remove(logger *slog.Logger) []CleanupError {
	if d == nil {
		return nil
	}
	var failures []CleanupError
	for _, path := range []string{d.Path, d.LogPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			failures = append(failures, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "job file cleanup failed", "descriptor_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the file manually"),
				logging.String(logging.FieldImpact, "temporary file remains on disk"),
			)
		}
	}
	return failures
}
