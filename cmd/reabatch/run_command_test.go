package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reabatch/internal/classify"
	"reabatch/internal/history"
	"reabatch/internal/services"
	"reabatch/internal/testsupport"
)

func TestRunCommandEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudioFiles(t, env.root, "kick1.wav", "snare1.wav", "amb1.wav")

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Found 3 audio files")
	requireContains(t, out, "kick: 1 files")
	requireContains(t, out, "rendering ")
	requireContains(t, out, "[OK] success")
	requireContains(t, out, "converted")

	unmatched := filepath.Join(env.root, "processed", "_unmatched")
	for _, name := range []string{"snare1.wav", "amb1.wav"} {
		if _, err := os.Stat(filepath.Join(unmatched, name)); err != nil {
			t.Fatalf("expected %s moved to %s: %v", name, unmatched, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.root, "kick1.wav")); err != nil {
		t.Fatalf("matched file should stay in place: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Verdict != "success" || runs[0].Files != 3 || runs[0].Unmatched != 2 {
		t.Fatalf("unexpected history: %+v", runs)
	}

	out, _, err = runCLI(t, []string{"logs", "--run", runs[0].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	requireContains(t, out, "[stdout] rendering")
	requireContains(t, out, "completed successfully")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 runs")
}

func TestRunCommandStderrFails(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeReaper(`echo "plugin missing" >&2`))
	testsupport.WriteAudioFiles(t, env.root, "kick1.wav")

	out, _, err := runCLI(t, []string{"run", "--json"}, env.configPath)
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected subprocess failure, got %v", err)
	}
	var summary runSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Result == nil || summary.Result.Succeeded() || summary.Result.ExitCode != 0 {
		t.Fatalf("expected failed verdict with exit 0, got %+v", summary.Result)
	}
	if !strings.Contains(summary.Result.Stderr, "plugin missing") {
		t.Fatalf("expected stderr captured, got %q", summary.Result.Stderr)
	}
	if summary.FailureKind != "subprocess_failure" {
		t.Fatalf("failure kind = %q", summary.FailureKind)
	}
}

func TestRunCommandNothingToProcess(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudioFiles(t, env.root, "snare1.wav")

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("nothing to process should not fail: %v", err)
	}
	requireContains(t, out, "[INFO]")
	if _, err := os.Stat(filepath.Join(env.root, "processed", "_unmatched", "snare1.wav")); err != nil {
		t.Fatalf("unmatched file should still move: %v", err)
	}
}

func TestRunCommandFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	other := t.TempDir()
	testsupport.WriteAudioFiles(t, other, "Snare_top.wav")
	testsupport.WritePreset(t, env.chains, "Snare")
	outDir := filepath.Join(t.TempDir(), "rendered")

	out, _, err := runCLI(t, []string{
		"run", other,
		"--rule", "snare",
		"--output-dir", outDir,
		"--format", "mp3",
		"--peak-db=-3",
	}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "snare: 1 files")
	if info, err := os.Stat(filepath.Join(outDir, "snare")); err != nil || !info.IsDir() {
		t.Fatalf("expected group output dir under --output-dir: %v", err)
	}
}

func TestRunCommandRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, args := range [][]string{
		{"run", "--format", "flac"},
		{"run", "--peak-db", "1"},
		{"run", "--rule", "=P1"},
	} {
		if _, _, err := runCLI(t, args, env.configPath); err == nil {
			t.Fatalf("expected %v to fail", args)
		}
	}
}

func TestPreviewDoesNotTouchFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudioFiles(t, env.root, "KICK_in.wav", "amb1.wav")

	out, _, err := runCLI(t, []string{"preview", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	var rows []classify.PreviewRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode preview: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	byName := map[string]classify.PreviewRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	if r := byName["KICK_in.wav"]; !r.Matched || r.Keyword != "kick" {
		t.Fatalf("expected KICK_in.wav to match kick, got %+v", r)
	}
	if byName["amb1.wav"].Matched {
		t.Fatal("amb1.wav should be unmatched")
	}
	if _, err := os.Stat(filepath.Join(env.root, "amb1.wav")); err != nil {
		t.Fatalf("preview must not move files: %v", err)
	}

	out, _, err = runCLI(t, []string{"preview"}, env.configPath)
	if err != nil {
		t.Fatalf("preview table: %v", err)
	}
	requireContains(t, out, "P1")
	requireContains(t, out, "2 files, 1 unmatched")
}

func TestScanCommandSkipsOutputTree(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteAudioFiles(t, env.root, "a.wav", "sub/b.flac", "processed/kick/c.wav", "notes.txt")

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "2 audio files")
	if strings.Contains(out, "c.wav") {
		t.Fatalf("output tree should be excluded:\n%s", out)
	}
}

func TestPresetsExtractAndList(t *testing.T) {
	project := strings.Join([]string{
		"<REAPER_PROJECT 0.1",
		"  <TRACK",
		`    NAME "Kick Bus"`,
		"    <FXCHAIN",
		`      <VST "VST: ReaComp (Cockos)" reacomp.dll 0 "" 1919247213`,
		"      >",
		"    >",
		"  >",
		">",
	}, "\n")
	env := setupCLITestEnv(t, testsupport.WithProject(project))

	out, _, err := runCLI(t, []string{"presets", "extract"}, env.configPath)
	if err != nil {
		t.Fatalf("presets extract: %v", err)
	}
	requireContains(t, out, "Extracted 1 presets")
	requireContains(t, out, "Kick Bus")

	out, _, err = runCLI(t, []string{"presets", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("presets list: %v", err)
	}
	requireContains(t, out, "kick_bus")
	requireContains(t, out, "P1")

	out, _, err = runCLI(t, []string{"presets", "clean"}, env.configPath)
	if err != nil {
		t.Fatalf("presets clean: %v", err)
	}
	requireContains(t, out, "Cleared")
	entries, err := os.ReadDir(env.cfg.PresetDir())
	if err != nil {
		t.Fatalf("read preset dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty preset dir, got %d entries", len(entries))
	}
}

func TestDoctorReportsMissingReaper(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor with fake reaper: %v\n%s", err, out)
	}
	requireContains(t, out, "== Preflight ==")

	missing := filepath.Join(t.TempDir(), "config.toml")
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	patched := strings.Replace(string(data), env.cfg.Reaper.Executable, filepath.Join(t.TempDir(), "nope"), 1)
	if err := os.WriteFile(missing, []byte(patched), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, _, err = runCLI(t, []string{"doctor"}, missing)
	if err == nil {
		t.Fatalf("expected doctor to fail without reaper:\n%s", out)
	}
	requireContains(t, out, "[ERROR]")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Notifications disabled")
}
