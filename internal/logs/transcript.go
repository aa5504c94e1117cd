package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrTranscriptNotFound reports that no transcript matches a run ID.
var ErrTranscriptNotFound = errors.New("transcript not found")

// TranscriptDir is the folder under log_dir holding per-run transcripts.
func TranscriptDir(logDir string) string {
	return filepath.Join(logDir, "runs")
}

// Transcript resolves runID, or a unique prefix of it, to a transcript path
// inside dir.
func Transcript(dir, runID string) (string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTranscriptNotFound, runID)
		}
		return "", fmt.Errorf("list transcripts: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".log" {
			continue
		}
		id := strings.TrimSuffix(name, ".log")
		if id == runID {
			return filepath.Join(dir, name), nil
		}
		if strings.HasPrefix(id, runID) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrTranscriptNotFound, runID)
	case 1:
		return filepath.Join(dir, matches[0]), nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("run id %q is ambiguous (%d transcripts)", runID, len(matches))
	}
}
