package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reabatch/internal/classify"
	"reabatch/internal/history"
	"reabatch/internal/jobfile"
	"reabatch/internal/logging"
	"reabatch/internal/notifications"
	"reabatch/internal/reaper"
	"reabatch/internal/scanner"
	"reabatch/internal/services"
	"reabatch/internal/staging"
)

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (string, error)
}

// Report summarises a run for the caller.
type Report struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	Executable     string
	Files          int
	Groups         []classify.Group
	Unmatched      []string
	MoveFailures   []classify.MoveFailure
	OutputDir      string
	DescriptorPath string
	TranscriptPath string
	// Result is nil when the run ended before REAPER was launched.
	Result *reaper.Result
}

// Option configures a Runner.
type Option func(*Runner)

// WithLockFile guards runs across processes with a lock file at path.
func WithLockFile(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.lockPath = path
		}
	}
}

// WithExecutor replaces the subprocess executor (primarily for tests).
func WithExecutor(exec reaper.Executor) Option {
	return func(r *Runner) {
		r.exec = exec
	}
}

// WithRecorder stores every finished run.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithNotifier alerts svc when a run finishes or fails. Runs that end with
// nothing to process or lose the run lock are not announced.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) {
		r.notifier = svc
	}
}

// WithTranscripts writes REAPER's output for each run to dir, pruning
// transcripts older than retentionDays.
func WithTranscripts(dir string, retentionDays int) Option {
	return func(r *Runner) {
		r.transcriptDir = dir
		r.retentionDays = retentionDays
	}
}

// Runner executes batch runs one at a time.
type Runner struct {
	mu            sync.Mutex
	lockPath      string
	logger        *slog.Logger
	exec          reaper.Executor
	recorder      Recorder
	notifier      notifications.Service
	transcriptDir string
	retentionDays int
	now           func() time.Time
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger: logging.NewComponentLogger(logger, "batch"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one batch run. It returns services.ErrRunInProgress when
// another run holds the guard. Failures before REAPER starts are reported to
// obs.Failure and returned; once REAPER has run, obs.Result always receives
// the verdict, and a failed verdict is also returned as services.ErrSubprocess.
func (r *Runner) Run(ctx context.Context, cfg RunConfig, obs Observer) (Report, error) {
	if obs == nil {
		obs = ObserverFuncs{}
	}
	if !r.mu.TryLock() {
		return Report{}, services.Wrap(services.ErrRunInProgress, "batch", "acquire", "a run is already active in this process", nil)
	}
	defer r.mu.Unlock()

	release, err := r.acquireFileLock()
	if err != nil {
		return Report{}, err
	}
	defer release()

	report := Report{RunID: uuid.NewString(), StartedAt: r.now()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("batch run started",
		logging.String("root", cfg.RootDir),
		logging.Int("rules", len(cfg.Rules)),
		logging.String(logging.FieldEventType, "run_started"),
	)

	err = r.execute(ctx, cfg, obs, &report)
	report.FinishedAt = r.now()
	r.record(ctx, cfg, report, err)
	r.notify(ctx, cfg, report, err)

	switch {
	case err == nil:
		logger.Info("batch run finished",
			logging.String("verdict", string(report.Result.Verdict)),
			logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
			logging.String(logging.FieldEventType, "run_finished"),
		)
	case services.IsInformational(err):
		logger.Info("batch run ended with nothing to process",
			logging.String(logging.FieldEventType, "run_nothing_to_process"),
		)
	default:
		logging.ErrorWithContext(logger, "batch run failed", "run_failed",
			logging.Error(err),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.String(logging.FieldErrorHint, "see the failure message and REAPER log"),
			logging.String(logging.FieldImpact, "some or all files were not rendered"),
		)
	}
	return report, err
}

func (r *Runner) acquireFileLock() (func(), error) {
	if r.lockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.lockPath), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "create lock dir", r.lockPath, err)
	}
	lock := flock.New(r.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", r.lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrRunInProgress, "batch", "acquire lock", "another reabatch process is running a batch", nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.String("path", r.lockPath), logging.Error(err))
		}
	}, nil
}

func (r *Runner) execute(ctx context.Context, cfg RunConfig, obs Observer, report *Report) error {
	fail := func(stage string, err error) error {
		obs.Failure(Failure{
			Kind:          services.FailureKind(err),
			Stage:         stage,
			Message:       err.Error(),
			Informational: services.IsInformational(err),
		})
		return err
	}

	// Nothing on disk changes before the executable is confirmed.
	stageCtx := services.WithStage(ctx, "validate")
	exe, err := reaper.Locate(cfg.Reaper.Executable)
	if err != nil {
		return fail("validate", err)
	}
	report.Executable = exe
	client, err := reaper.New(exe,
		reaper.WithExecutor(r.exec),
		reaper.WithFlags(cfg.Reaper.FreshInstanceFlag, cfg.Reaper.BatchFlag),
		reaper.WithOutputBuffer(cfg.Reaper.OutputBuffer),
	)
	if err != nil {
		return fail("validate", services.Wrap(services.ErrExternalToolMissing, "validate", "reaper client", "", err))
	}
	base := cfg.BaseOutputDir()
	if base == "" {
		return fail("validate", services.Wrap(services.ErrValidation, "validate", "output dir", "audio root is not set", nil))
	}
	report.OutputDir = base

	catalog, extracted, err := LoadCatalog(services.WithStage(ctx, "presets"), cfg, r.logger)
	if extracted {
		defer r.purgePresets(stageCtx, cfg.PresetDir)
	}
	if err != nil {
		return fail("presets", err)
	}
	rules, err := ResolveRules(cfg.Rules, catalog)
	if err != nil {
		return fail("rules", err)
	}

	files, err := scanner.Scan(services.WithStage(ctx, "scan"), cfg.RootDir, cfg.ScanExclusions(), r.logger)
	if err != nil {
		return fail("scan", err)
	}
	report.Files = len(files)
	obs.Progress(fmt.Sprintf("Found %d audio files in %s", len(files), cfg.RootDir))

	result := classify.Classify(files, rules)
	report.Unmatched = result.Unmatched.Files
	for _, g := range result.Groups {
		obs.Progress(fmt.Sprintf("%s: %d files", g.Key, len(g.Files)))
	}
	if n := len(result.Unmatched.Files); n > 0 {
		moved := classify.MoveUnmatched(services.WithStage(ctx, "classify"), result.Unmatched.Files, cfg.UnmatchedDir(), r.logger)
		report.MoveFailures = moved.Failed
		obs.Progress(fmt.Sprintf("Moved %d unmatched files to %s (%d failed)", len(moved.Moved), cfg.UnmatchedDir(), len(moved.Failed)))
	}

	job, err := jobfile.Build(result.Groups, cfg.Output, base)
	if err != nil {
		return fail("descriptor", err)
	}
	report.Groups = result.Groups

	descriptor, err := staging.WriteDescriptor(cfg.TempDir, report.RunID, jobfile.Marshal(job))
	if err != nil {
		return fail("descriptor", services.Wrap(services.ErrConfiguration, "descriptor", "write", cfg.TempDir, err))
	}
	report.DescriptorPath = descriptor.Path
	renderCtx := services.WithStage(ctx, "render")
	defer descriptor.Remove(logging.WithContext(renderCtx, r.logger))

	verdict := r.render(renderCtx, client, descriptor, job, obs, report)
	report.Result = &verdict
	obs.Result(verdict)
	if !verdict.Succeeded() {
		return services.Wrap(services.ErrSubprocess, "render", "reaper batch convert",
			fmt.Sprintf("exit code %d", verdict.ExitCode), nil)
	}
	return nil
}

func (r *Runner) render(ctx context.Context, client *reaper.Client, descriptor *staging.Descriptor, job jobfile.Job, obs Observer, report *Report) reaper.Result {
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("launching reaper",
		logging.String("executable", client.Binary()),
		logging.String("descriptor", descriptor.Path),
		logging.Int("blocks", len(job.Blocks)),
		logging.Int("files", job.FileCount()),
		logging.String(logging.FieldEventType, "reaper_launch"),
	)
	obs.Progress(fmt.Sprintf("Rendering %d files in %d groups", job.FileCount(), len(job.Blocks)))

	transcript := r.openTranscript(ctx, report.RunID)
	task := client.Convert(ctx, descriptor.Path)
	for line := range task.Lines() {
		obs.Progress(line.Text)
		transcript.write(line)
	}
	out, err := task.Wait()
	if err != nil {
		out.Stderr += err.Error() + "\n"
		if out.ExitCode == 0 {
			out.ExitCode = -1
		}
	}
	if out.Dropped > 0 {
		logger.Info("output lines dropped while observer was busy",
			logging.Any("dropped", out.Dropped),
			logging.String(logging.FieldEventType, "output_dropped"),
		)
	}

	logText, found, readErr := descriptor.ReadLog()
	switch {
	case readErr != nil:
		logging.WarnWithContext(logger, "failed to read reaper log", "reaper_log_unreadable",
			logging.String("path", descriptor.LogPath),
			logging.Error(readErr),
			logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
			logging.String(logging.FieldImpact, "verdict reported without REAPER's log"),
		)
	case !found:
		logger.Info("reaper log not produced", logging.String("path", descriptor.LogPath))
	}

	result := reaper.NewResult(out, logText, found)
	transcript.finish(result)
	report.TranscriptPath = transcript.path
	return result
}

func (r *Runner) purgePresets(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to remove temp presets", "cleanup_failure",
			logging.String("path", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'reabatch presets clean'"),
			logging.String(logging.FieldImpact, "stale presets remain until the next extraction"),
		)
	}
}

func (r *Runner) record(ctx context.Context, cfg RunConfig, report Report, runErr error) {
	if r.recorder == nil {
		return
	}
	run := history.Run{
		ID:           report.RunID,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		ProjectPath:  cfg.ProjectPath,
		RootDir:      cfg.RootDir,
		OutputDir:    report.OutputDir,
		Files:        report.Files,
		Groups:       len(report.Groups),
		Unmatched:    len(report.Unmatched),
		MoveFailures: len(report.MoveFailures),
		FailureKind:  services.FailureKind(runErr),
	}
	switch {
	case report.Result != nil:
		code := report.Result.ExitCode
		run.ExitCode = &code
		run.Verdict = string(report.Result.Verdict)
		run.Message = report.Result.Message()
	case services.IsInformational(runErr):
		run.Verdict = "skipped"
		run.Message = runErr.Error()
	default:
		run.Verdict = string(reaper.Failure)
		if runErr != nil {
			run.Message = runErr.Error()
		}
	}
	if _, err := r.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check log_dir permissions or delete history.db"),
			logging.String(logging.FieldImpact, "run missing from 'reabatch history'"),
		)
	}
}

func (r *Runner) notify(ctx context.Context, cfg RunConfig, report Report, runErr error) {
	if r.notifier == nil || services.IsInformational(runErr) {
		return
	}
	notice := notifications.RunNotice{
		RootDir:   cfg.RootDir,
		Files:     report.Files,
		Groups:    len(report.Groups),
		Unmatched: len(report.Unmatched),
		Duration:  report.FinishedAt.Sub(report.StartedAt),
	}
	if report.Result != nil {
		notice.ExitCode = report.Result.ExitCode
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	if runErr == nil {
		err = r.notifier.NotifyRunCompleted(ctx, notice)
	} else {
		err = r.notifier.NotifyRunFailed(ctx, notice, runErr)
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to send run notification", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run outcome not announced"),
		)
	}
}
