package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"reabatch/internal/batch"
	"reabatch/internal/config"
	"reabatch/internal/history"
	"reabatch/internal/jobfile"
	"reabatch/internal/logging"
	"reabatch/internal/notifications"
	"reabatch/internal/reaper"
	"reabatch/internal/services"
	"reabatch/internal/staging"
	"reabatch/internal/testsupport"
)

type captureExecutor struct {
	mu         sync.Mutex
	calls      int
	args       []string
	descriptor []byte
	stderr     string
	exitCode   int
	log        string
}

func (c *captureExecutor) Run(_ context.Context, _ string, args []string, onLine func(reaper.Line)) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.args = append([]string(nil), args...)
	path := args[len(args)-1]
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, err
	}
	c.descriptor = data
	if c.log != "" {
		if err := os.WriteFile(staging.LogPathFor(path), []byte(c.log), 0o644); err != nil {
			return -1, err
		}
	}
	onLine(reaper.Line{Stream: reaper.Stdout, Text: "rendering"})
	if c.stderr != "" {
		onLine(reaper.Line{Stream: reaper.Stderr, Text: c.stderr})
	}
	return c.exitCode, nil
}

type memoryRecorder struct {
	runs []history.Run
}

func (m *memoryRecorder) Record(_ context.Context, run history.Run) (string, error) {
	m.runs = append(m.runs, run)
	return run.ID, nil
}

type recordingObserver struct {
	progress []string
	results  []reaper.Result
	failures []batch.Failure
}

func (o *recordingObserver) Progress(text string)        { o.progress = append(o.progress, text) }
func (o *recordingObserver) Result(result reaper.Result) { o.results = append(o.results, result) }
func (o *recordingObserver) Failure(f batch.Failure)     { o.failures = append(o.failures, f) }

type fixture struct {
	cfg      *config.Config
	run      batch.RunConfig
	exec     *captureExecutor
	recorder *memoryRecorder
	runner   *batch.Runner
	obs      *recordingObserver
	preset   string
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()
	opts = append([]testsupport.ConfigOption{testsupport.WithFakeReaper("exit 0")}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Project.FXChainDir = filepath.Join(testsupport.BaseDir(cfg), "chains")
	preset := testsupport.WritePreset(t, cfg.Project.FXChainDir, "P1")
	testsupport.WriteAudioFiles(t, cfg.Audio.RootDir, "kick1.wav", "snare1.wav", "amb1.wav")

	f := &fixture{
		cfg:      cfg,
		exec:     &captureExecutor{},
		recorder: &memoryRecorder{},
		obs:      &recordingObserver{},
		preset:   preset,
	}
	f.runner = batch.NewRunner(logging.NewNop(),
		batch.WithExecutor(f.exec),
		batch.WithRecorder(f.recorder),
		batch.WithLockFile(cfg.LockPath()),
		batch.WithTranscripts(filepath.Join(cfg.Paths.LogDir, "runs"), cfg.Logging.RetentionDays),
	)
	return f
}

func (f *fixture) runConfig(t *testing.T) batch.RunConfig {
	t.Helper()
	rc, err := batch.FromConfig(f.cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	return rc
}

func TestRunEndToEnd(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}))
	root := f.cfg.Audio.RootDir

	report, err := f.runner.Run(context.Background(), f.runConfig(t), f.obs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	job, err := jobfile.Parse(f.exec.descriptor)
	if err != nil {
		t.Fatalf("parse captured descriptor: %v", err)
	}
	if len(job.Blocks) != 1 {
		t.Fatalf("expected exactly one config block, got %d", len(job.Blocks))
	}
	block := job.Blocks[0]
	if block.FXChain != f.preset {
		t.Fatalf("FXCHAIN = %s, want %s", block.FXChain, f.preset)
	}
	if want := filepath.Join(root, "processed", "kick"); block.OutPath != want {
		t.Fatalf("OUTPATH = %s, want %s", block.OutPath, want)
	}
	if len(block.Files) != 1 || block.Files[0] != filepath.Join(root, "kick1.wav") {
		t.Fatalf("unexpected files %v", block.Files)
	}
	if strings.Count(string(f.exec.descriptor), "<CONFIG") != 1 {
		t.Fatalf("descriptor has extra blocks:\n%s", f.exec.descriptor)
	}

	for _, name := range []string{"snare1.wav", "amb1.wav"} {
		if _, err := os.Stat(filepath.Join(root, "processed", "_unmatched", name)); err != nil {
			t.Fatalf("expected %s in unmatched dir: %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Fatalf("expected %s moved out of root", name)
		}
	}

	if _, err := os.Stat(report.DescriptorPath); !os.IsNotExist(err) {
		t.Fatalf("expected descriptor removed, stat err=%v", err)
	}
	if want := []string{"-newinst", "-batchconvert", report.DescriptorPath}; strings.Join(f.exec.args, " ") != strings.Join(want, " ") {
		t.Fatalf("args = %v, want %v", f.exec.args, want)
	}
	if report.Files != 3 || len(report.Unmatched) != 2 || report.Result == nil || !report.Result.Succeeded() {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(f.obs.results) != 1 || len(f.obs.failures) != 0 {
		t.Fatalf("expected one result event, got results=%d failures=%v", len(f.obs.results), f.obs.failures)
	}
	if len(f.recorder.runs) != 1 || f.recorder.runs[0].Verdict != "success" || f.recorder.runs[0].ID != report.RunID {
		t.Fatalf("unexpected history %+v", f.recorder.runs)
	}
	if report.TranscriptPath == "" {
		t.Fatal("expected transcript path")
	}
	data, err := os.ReadFile(report.TranscriptPath)
	if err != nil || !strings.Contains(string(data), "rendering") {
		t.Fatalf("transcript missing output: %q, %v", data, err)
	}
}

func TestRunSkipsExplicitOutputDirInsideRoot(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}))
	root := f.cfg.Audio.RootDir
	testsupport.WriteAudioFiles(t, filepath.Join(root, "out", "kick"), "kick1.wav")
	testsupport.WriteAudioFiles(t, filepath.Join(root, "out", "_unmatched"), "pad.wav")
	rc := f.runConfig(t)
	rc.OutputDir = filepath.Join(root, "out")

	report, err := f.runner.Run(context.Background(), rc, f.obs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	job, err := jobfile.Parse(f.exec.descriptor)
	if err != nil {
		t.Fatalf("parse captured descriptor: %v", err)
	}
	if len(job.Blocks) != 1 || len(job.Blocks[0].Files) != 1 || job.Blocks[0].Files[0] != filepath.Join(root, "kick1.wav") {
		t.Fatalf("earlier output was queued again: %+v", job.Blocks)
	}
	if want := filepath.Join(root, "out", "kick"); job.Blocks[0].OutPath != want {
		t.Fatalf("OUTPATH = %s, want %s", job.Blocks[0].OutPath, want)
	}
	if report.Files != 3 {
		t.Fatalf("expected 3 scanned files, got %d", report.Files)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "_unmatched", "pad.wav")); err != nil {
		t.Fatalf("unmatched output must stay in place: %v", err)
	}
}

func TestRunStderrWithZeroExitIsFailure(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}))
	f.exec.stderr = "WARNING: could not open kick1.wav"
	f.exec.log = "0 files converted\n"

	report, err := f.runner.Run(context.Background(), f.runConfig(t), f.obs)
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected ErrSubprocess, got %v", err)
	}
	if report.Result == nil || report.Result.Verdict != reaper.Failure || report.Result.ExitCode != 0 {
		t.Fatalf("unexpected result %+v", report.Result)
	}
	if len(f.obs.results) != 1 {
		t.Fatal("failed verdict must still reach the observer")
	}
	msg := f.obs.results[0].Message()
	if !strings.Contains(msg, "could not open kick1.wav") || !strings.Contains(msg, "0 files converted") {
		t.Fatalf("message must carry stderr and log verbatim: %q", msg)
	}
	if _, err := os.Stat(staging.LogPathFor(report.DescriptorPath)); !os.IsNotExist(err) {
		t.Fatalf("expected log companion removed, stat err=%v", err)
	}
	if f.recorder.runs[0].FailureKind != "subprocess_failure" {
		t.Fatalf("unexpected failure kind %q", f.recorder.runs[0].FailureKind)
	}
}

func TestRunMissingExecutableFailsBeforeAnyMove(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}))
	rc := f.runConfig(t)
	rc.Reaper.Executable = filepath.Join(testsupport.BaseDir(f.cfg), "missing", "reaper")

	_, err := f.runner.Run(context.Background(), rc, f.obs)
	if !errors.Is(err, services.ErrExternalToolMissing) {
		t.Fatalf("expected ErrExternalToolMissing, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Audio.RootDir, "amb1.wav")); err != nil {
		t.Fatalf("no file may move before the executable is validated: %v", err)
	}
	if len(f.obs.failures) != 1 || f.obs.failures[0].Kind != "external_tool_missing" || f.obs.failures[0].Stage != "validate" {
		t.Fatalf("unexpected failures %+v", f.obs.failures)
	}
	if f.exec.calls != 0 {
		t.Fatal("executor must not run")
	}
}

func TestRunUnknownPresetIsValidationError(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "Nope"}))

	_, err := f.runner.Run(context.Background(), f.runConfig(t), f.obs)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(f.obs.failures) != 1 || f.obs.failures[0].Stage != "rules" {
		t.Fatalf("unexpected failures %+v", f.obs.failures)
	}
}

func TestRunNothingToProcess(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "vocal", Preset: "P1"}))

	report, err := f.runner.Run(context.Background(), f.runConfig(t), f.obs)
	if !errors.Is(err, services.ErrNothingToProcess) {
		t.Fatalf("expected ErrNothingToProcess, got %v", err)
	}
	if report.Result != nil || f.exec.calls != 0 {
		t.Fatal("REAPER must not run without matched files")
	}
	if len(f.obs.failures) != 1 || !f.obs.failures[0].Informational {
		t.Fatalf("expected informational failure event, got %+v", f.obs.failures)
	}
	if len(report.Unmatched) != 3 {
		t.Fatalf("expected all files unmatched, got %v", report.Unmatched)
	}
	if f.recorder.runs[0].Verdict != "skipped" {
		t.Fatalf("unexpected verdict %q", f.recorder.runs[0].Verdict)
	}
}

func TestRunRejectedWhileLockHeld(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}))
	if err := os.MkdirAll(f.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	other := flock.New(f.cfg.LockPath())
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: %v %v", ok, err)
	}
	defer other.Unlock()

	_, err = f.runner.Run(context.Background(), f.runConfig(t), f.obs)
	if !errors.Is(err, services.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.cfg.Audio.RootDir, "amb1.wav")); err != nil {
		t.Fatal("rejected run must not touch files")
	}
	if len(f.recorder.runs) != 0 {
		t.Fatal("rejected run must not be recorded")
	}
}

func TestRunRejectedWhileRunActive(t *testing.T) {
	f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}))
	rc := f.runConfig(t)

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := &blockingExecutor{started: started, release: release}
	runner := batch.NewRunner(logging.NewNop(), batch.WithExecutor(blocking))

	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), rc, nil)
		done <- err
	}()
	<-started

	if _, err := runner.Run(context.Background(), rc, nil); !errors.Is(err, services.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

type blockingExecutor struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingExecutor) Run(ctx context.Context, _ string, _ []string, _ func(reaper.Line)) (int, error) {
	close(b.started)
	select {
	case <-b.release:
		return 0, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

const kickProject = `<REAPER_PROJECT 0.1
  <TRACK
    NAME "Kick"
    <FXCHAIN
      <VST "VST: ReaComp (Cockos)" reacomp.dll 0 ""
      >
    >
  >
>
`

func TestRunExtractsProjectPresetsAndPurgesThem(t *testing.T) {
	f := newFixture(t,
		testsupport.WithProject(kickProject),
		testsupport.WithRules(config.Rule{Keyword: "kick"}),
	)

	if _, err := f.runner.Run(context.Background(), f.runConfig(t), f.obs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	job, err := jobfile.Parse(f.exec.descriptor)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := filepath.Join(f.cfg.PresetDir(), "kick.RfxChain"); job.Blocks[0].FXChain != want {
		t.Fatalf("FXCHAIN = %s, want auto-selected %s", job.Blocks[0].FXChain, want)
	}
	if _, err := os.Stat(f.cfg.PresetDir()); !os.IsNotExist(err) {
		t.Fatalf("expected temp presets purged after run, stat err=%v", err)
	}
}

func TestRunWithFakeReaperProcess(t *testing.T) {
	script := testsupport.DescriptorArg + `
echo "processing $job"
log="${job%.*}.log"
echo "rendered kick1.wav" > "$log"
exit 0`
	cfg := testsupport.NewConfig(t,
		testsupport.WithFakeReaper(script),
		testsupport.WithRules(config.Rule{Keyword: "kick", Preset: "P1"}),
	)
	cfg.Project.FXChainDir = filepath.Join(testsupport.BaseDir(cfg), "chains")
	testsupport.WritePreset(t, cfg.Project.FXChainDir, "P1")
	testsupport.WriteAudioFiles(t, cfg.Audio.RootDir, "kick1.wav")

	rc, err := batch.FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	obs := &recordingObserver{}
	report, err := batch.NewRunner(logging.NewNop()).Run(context.Background(), rc, obs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Result.LogFound || !strings.Contains(report.Result.Log, "rendered kick1.wav") {
		t.Fatalf("expected REAPER log in result, got %+v", report.Result)
	}
	var sawProcessing bool
	for _, p := range obs.progress {
		sawProcessing = sawProcessing || strings.HasPrefix(p, "processing ")
	}
	if !sawProcessing {
		t.Fatalf("expected streamed stdout in progress events, got %v", obs.progress)
	}
}

type memoryNotifier struct {
	completed []notifications.RunNotice
	failed    []error
}

func (m *memoryNotifier) NotifyRunCompleted(_ context.Context, notice notifications.RunNotice) error {
	m.completed = append(m.completed, notice)
	return nil
}

func (m *memoryNotifier) NotifyRunFailed(_ context.Context, _ notifications.RunNotice, err error) error {
	m.failed = append(m.failed, err)
	return nil
}

func (m *memoryNotifier) TestNotification(context.Context) error { return nil }

func TestRunNotifiesOutcome(t *testing.T) {
	tests := []struct {
		name          string
		keyword       string
		stderr        string
		wantCompleted int
		wantFailed    int
	}{
		{name: "success", keyword: "kick", wantCompleted: 1},
		{name: "stderr failure", keyword: "kick", stderr: "boom", wantFailed: 1},
		{name: "nothing to process", keyword: "vocal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testsupport.WithRules(config.Rule{Keyword: tt.keyword, Preset: "P1"}))
			f.exec.stderr = tt.stderr
			notifier := &memoryNotifier{}
			runner := batch.NewRunner(logging.NewNop(), batch.WithExecutor(f.exec), batch.WithNotifier(notifier))

			_, _ = runner.Run(context.Background(), f.runConfig(t), f.obs)

			if len(notifier.completed) != tt.wantCompleted || len(notifier.failed) != tt.wantFailed {
				t.Fatalf("completed=%d failed=%d, want %d/%d", len(notifier.completed), len(notifier.failed), tt.wantCompleted, tt.wantFailed)
			}
			if tt.wantCompleted == 1 {
				notice := notifier.completed[0]
				if notice.Files != 3 || notice.Groups != 1 || notice.Unmatched != 2 {
					t.Fatalf("unexpected notice %+v", notice)
				}
			}
		})
	}
}
