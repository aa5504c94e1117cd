package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"reabatch/internal/batch"
	"reabatch/internal/config"
	"reabatch/internal/history"
	"reabatch/internal/logging"
	"reabatch/internal/logs"
	"reabatch/internal/notifications"
	"reabatch/internal/reaper"
	"reabatch/internal/services"
	"reabatch/internal/staging"
)

// Descriptors older than this are leftovers from a crashed run.
const staleDescriptorAge = 24 * time.Hour

type runSummary struct {
	RunID        string         `json:"run_id"`
	Files        int            `json:"files"`
	Groups       int            `json:"groups"`
	Unmatched    int            `json:"unmatched"`
	MoveFailures int            `json:"move_failures"`
	OutputDir    string         `json:"output_dir,omitempty"`
	Transcript   string         `json:"transcript,omitempty"`
	Result       *reaper.Result `json:"result,omitempty"`
	FailureKind  string         `json:"failure_kind,omitempty"`
	Error        string         `json:"error,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Classify audio files and render every group through REAPER",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rc, err := flags.apply(cmd, cfg, args)
			if err != nil {
				return err
			}
			logger := ctx.logger()
			staging.CleanStale(cmd.Context(), cfg.Paths.TempDir, staleDescriptorAge, logger)

			opts := []batch.Option{
				batch.WithLockFile(cfg.LockPath()),
				batch.WithTranscripts(logs.TranscriptDir(cfg.Paths.LogDir), cfg.Logging.RetentionDays),
				batch.WithNotifier(notifications.NewService(cfg)),
			}
			if store := openHistory(cfg, logger); store != nil {
				defer store.Close()
				opts = append(opts, batch.WithRecorder(store))
			}
			runner := batch.NewRunner(logger, opts...)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			obs := batch.ObserverFuncs{}
			if !jsonOutput {
				obs = consoleObserver(out, colorize)
			}

			report, runErr := runner.Run(cmd.Context(), rc, obs)
			if jsonOutput {
				if err := writeJSON(cmd, summarize(report, runErr)); err != nil {
					return err
				}
			}
			if services.IsInformational(runErr) {
				return nil
			}
			return runErr
		},
	}

	flags.bindSelection(cmd)
	flags.bindRender(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print a JSON summary instead of progress")
	return cmd
}

func consoleObserver(out io.Writer, colorize bool) batch.ObserverFuncs {
	return batch.ObserverFuncs{
		OnProgress: func(text string) {
			fmt.Fprintln(out, text)
		},
		OnResult: func(result reaper.Result) {
			fmt.Fprintln(out, renderStatusLine("Render", verdictKind(result.Verdict), string(result.Verdict), colorize))
			fmt.Fprintln(out, result.Message())
		},
		OnFailure: func(f batch.Failure) {
			kind := statusError
			if f.Informational {
				kind = statusInfo
			}
			fmt.Fprintln(out, renderStatusLine(f.Stage, kind, f.Message, colorize))
		},
	}
}

func summarize(report batch.Report, runErr error) runSummary {
	s := runSummary{
		RunID:        report.RunID,
		Files:        report.Files,
		Groups:       len(report.Groups),
		Unmatched:    len(report.Unmatched),
		MoveFailures: len(report.MoveFailures),
		OutputDir:    report.OutputDir,
		Transcript:   report.TranscriptPath,
		Result:       report.Result,
		FailureKind:  services.FailureKind(runErr),
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	return s
}

// openHistory returns nil when history is disabled or unavailable; a broken
// history database never blocks a run.
func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		hint := "delete the history database to recreate it"
		if !errors.Is(err, history.ErrSchemaMismatch) {
			hint = "check log_dir permissions"
		}
		logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
			logging.String("path", cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "this run will not be recorded"),
		)
		return nil
	}
	return store
}
