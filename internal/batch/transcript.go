package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"reabatch/internal/logging"
	"reabatch/internal/reaper"
)

type transcript struct {
	path string
	file *os.File
	w    *bufio.Writer
}

// openTranscript starts a per-run copy of REAPER's output. A failure to open
// is logged and yields a transcript that discards writes.
func (r *Runner) openTranscript(ctx context.Context, runID string) *transcript {
	if r.transcriptDir == "" {
		return &transcript{}
	}
	logger := logging.WithContext(ctx, r.logger)
	if err := os.MkdirAll(r.transcriptDir, 0o755); err != nil {
		logger.Warn("transcript dir unavailable", logging.String("dir", r.transcriptDir), logging.Error(err))
		return &transcript{}
	}
	logging.PruneOldFiles(logger, r.transcriptDir, "*.log", r.retentionDays)

	path := filepath.Join(r.transcriptDir, runID+".log")
	file, err := os.Create(path)
	if err != nil {
		logger.Warn("transcript unavailable", logging.String("path", path), logging.Error(err))
		return &transcript{}
	}
	return &transcript{path: path, file: file, w: bufio.NewWriter(file)}
}

func (t *transcript) write(line reaper.Line) {
	if t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[%s] %s\n", line.Stream, line.Text)
}

func (t *transcript) finish(result reaper.Result) {
	if t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "\n%s\n", result.Message())
	_ = t.w.Flush()
	_ = t.file.Close()
}
