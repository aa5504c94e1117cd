package classify

import (
	"context"
	"log/slog"
	"path/filepath"

	"reabatch/internal/fileutil"
	"reabatch/internal/logging"
)

// MoveResult lists the outcome of relocating unmatched files.
type MoveResult struct {
	Moved  []string
	Failed []MoveFailure
}

// MoveFailure records a file that could not be relocated.
type MoveFailure struct {
	Path string
	Err  error
}

// MoveUnmatched moves each file into dir, keeping its basename. A failure on
// one file is logged and the remaining files are still attempted. Moves are
// not rolled back.
func MoveUnmatched(ctx context.Context, files []string, dir string, logger *slog.Logger) MoveResult {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "classify"))

	var result MoveResult
	for _, file := range files {
		if ctx.Err() != nil {
			result.Failed = append(result.Failed, MoveFailure{Path: file, Err: ctx.Err()})
			continue
		}
		dst := filepath.Join(dir, filepath.Base(file))
		if err := fileutil.MoveFile(file, dst); err != nil {
			result.Failed = append(result.Failed, MoveFailure{Path: file, Err: err})
			logging.WarnWithContext(logger, "failed to move unmatched file", "move_failure",
				logging.String("path", file),
				logging.String("destination", dst),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions or remove the existing file in the unmatched folder"),
				logging.String(logging.FieldImpact, "file stays in place and is not rendered"),
			)
			continue
		}
		result.Moved = append(result.Moved, dst)
	}
	if len(files) > 0 {
		logger.Info("unmatched files relocated",
			logging.String("dir", dir),
			logging.Int("moved", len(result.Moved)),
			logging.Int("failed", len(result.Failed)),
			logging.String(logging.FieldEventType, "unmatched_moved"),
		)
	}
	return result
}
