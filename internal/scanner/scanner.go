// Package scanner enumerates audio files beneath a root directory.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"reabatch/internal/logging"
	"reabatch/internal/services"
)

// Extensions lists the recognised audio extensions, lowercase with dot.
var Extensions = []string{".wav", ".mp3", ".flac", ".aiff", ".ogg", ".m4a"}

var extensionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Extensions))
	for _, ext := range Extensions {
		set[ext] = struct{}{}
	}
	return set
}()

// IsAudio reports whether path has a recognised audio extension.
func IsAudio(path string) bool {
	_, ok := extensionSet[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Exclusions names the directories a scan never descends into.
type Exclusions struct {
	// Name prunes every directory with this base name, at any depth.
	Name string
	// Dirs prunes these directories by path, whatever they are called.
	Dirs []string
}

func (e Exclusions) dirSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.Dirs))
	for _, dir := range e.Dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		set[abs] = struct{}{}
	}
	return set
}

// Scan walks root and returns the absolute paths of every audio file, sorted
// ascending. Directories matched by exclude are pruned, as are their contents.
// Unreadable subdirectories are logged and skipped; only a failure to read
// root itself is returned.
func Scan(ctx context.Context, root string, exclude Exclusions, logger *slog.Logger) ([]string, error) {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "scanner"))

	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrValidation, "scan", "resolve root", "audio root is empty", nil)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scan", "resolve root", root, err)
	}

	excludedDirs := exclude.dirSet()
	var files []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == absRoot {
				return err
			}
			logging.WarnWithContext(logger, "skipping unreadable path", "scan_warning",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
				logging.String(logging.FieldImpact, "files beneath this path are not processed"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			_, excluded := excludedDirs[path]
			if excluded || (exclude.Name != "" && d.Name() == exclude.Name) {
				logger.Debug("pruned output directory", logging.String("path", path))
				return fs.SkipDir
			}
			return nil
		}
		if IsAudio(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, services.Wrap(services.ErrValidation, "scan", "read root", absRoot, walkErr)
	}

	sort.Strings(files)
	logger.Info("scan complete",
		logging.String("root", absRoot),
		logging.Int("files", len(files)),
		logging.String(logging.FieldEventType, "scan_complete"),
	)
	return files, nil
}
