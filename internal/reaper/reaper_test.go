package reaper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"reabatch/internal/services"
)

type stubExecutor struct {
	lines    []Line
	exitCode int
	err      error
	binary   string
	args     []string
	release  chan struct{}
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onLine func(Line)) (int, error) {
	s.binary = binary
	s.args = append([]string(nil), args...)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return -1, ctx.Err()
		}
	}
	for _, line := range s.lines {
		onLine(line)
	}
	return s.exitCode, s.err
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		stderr string
		want   Verdict
	}{
		{"clean", 0, "", Success},
		{"warning with zero exit", 0, "WARNING: file skipped\n", Failure},
		{"blank stderr line", 0, "\n", Failure},
		{"non-zero exit", 1, "", Failure},
		{"non-zero with stderr", 3, "boom\n", Failure},
		{"not started", -1, "", Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reconcile(tt.code, tt.stderr); got != tt.want {
				t.Fatalf("Reconcile(%d, %q) = %s, want %s", tt.code, tt.stderr, got, tt.want)
			}
		})
	}
}

func TestTaskDeliversOutputAndBuffersStderr(t *testing.T) {
	exec := &stubExecutor{
		lines: []Line{
			{Stream: Stdout, Text: "converting kick1.wav"},
			{Stream: Stderr, Text: "warning: sample rate mismatch"},
			{Stream: Stdout, Text: "done"},
		},
	}
	task := StartTask(context.Background(), exec, "reaper", []string{"-batchconvert", "job.txt"}, 8)

	var got []string
	for line := range task.Lines() {
		got = append(got, line.Stream.String()+":"+line.Text)
	}
	out, err := task.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	want := []string{"stdout:converting kick1.wav", "stderr:warning: sample rate mismatch", "stdout:done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	if out.Stderr != "warning: sample rate mismatch\n" {
		t.Fatalf("unexpected stderr %q", out.Stderr)
	}
	if Reconcile(out.ExitCode, out.Stderr) != Failure {
		t.Fatal("expected stderr to fail the run")
	}
}

func TestTaskDropsLinesWhenConsumerIsSlow(t *testing.T) {
	exec := &stubExecutor{}
	for i := 0; i < 10; i++ {
		exec.lines = append(exec.lines, Line{Stream: Stdout, Text: fmt.Sprintf("line %d", i)})
	}
	exec.lines = append(exec.lines, Line{Stream: Stderr, Text: "late error"})

	task := StartTask(context.Background(), exec, "reaper", nil, 2)
	out, err := task.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if out.Dropped != 9 {
		t.Fatalf("expected 9 dropped lines, got %d", out.Dropped)
	}
	if out.Stderr != "late error\n" {
		t.Fatalf("stderr must be buffered even when dropped from the channel, got %q", out.Stderr)
	}
	n := 0
	for range task.Lines() {
		n++
	}
	if n != 2 {
		t.Fatalf("expected 2 buffered lines, got %d", n)
	}
}

func TestTaskStartDoesNotBlock(t *testing.T) {
	exec := &stubExecutor{release: make(chan struct{})}
	task := StartTask(context.Background(), exec, "reaper", nil, 1)

	select {
	case <-task.Done():
		t.Fatal("task finished before release")
	default:
	}
	close(exec.release)
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}
}

func TestTaskCancel(t *testing.T) {
	exec := &stubExecutor{release: make(chan struct{})}
	task := StartTask(context.Background(), exec, "reaper", nil, 1)
	task.Cancel()

	_, err := task.Wait()
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClientArgs(t *testing.T) {
	exec := &stubExecutor{}
	client, err := New("/opt/REAPER/reaper", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Convert(context.Background(), "/tmp/job.txt").Wait(); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if exec.binary != "/opt/REAPER/reaper" {
		t.Fatalf("unexpected binary %s", exec.binary)
	}
	if want := []string{"-newinst", "-batchconvert", "/tmp/job.txt"}; !reflect.DeepEqual(exec.args, want) {
		t.Fatalf("args = %v, want %v", exec.args, want)
	}

	client, _ = New("reaper", WithFlags("", "-batch"))
	if got := client.Args("j.txt"); !reflect.DeepEqual(got, []string{"-batch", "j.txt"}) {
		t.Fatalf("args without fresh flag = %v", got)
	}
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestResultMessage(t *testing.T) {
	ok := NewResult(Outcome{}, "", false)
	if !ok.Succeeded() || !strings.Contains(ok.Message(), "successfully") {
		t.Fatalf("unexpected success message %q", ok.Message())
	}
	bad := NewResult(Outcome{ExitCode: 0, Stderr: "warn\n"}, "render skipped kick1.wav\n", true)
	msg := bad.Message()
	if bad.Succeeded() || !strings.Contains(msg, "warn") || !strings.Contains(msg, "render skipped kick1.wav") {
		t.Fatalf("unexpected failure message %q", msg)
	}
}

func TestLocate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix executable bits")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "reaper")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := Locate(exe)
	if err != nil || got != exe {
		t.Fatalf("Locate(%s) = %s, %v", exe, got, err)
	}

	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{plain, dir, filepath.Join(dir, "missing")} {
		if _, err := Locate(bad); !errors.Is(err, services.ErrExternalToolMissing) {
			t.Fatalf("Locate(%s): expected ErrExternalToolMissing, got %v", bad, err)
		}
	}
}

func TestCommandExecutorReportsExitCodeAndStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	var lines []Line
	code, err := commandExecutor{}.Run(context.Background(), "/bin/sh",
		[]string{"-c", "echo out; echo err 1>&2; exit 3"},
		func(l Line) { lines = append(lines, l) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	var sawOut, sawErr bool
	for _, l := range lines {
		sawOut = sawOut || (l.Stream == Stdout && l.Text == "out")
		sawErr = sawErr || (l.Stream == Stderr && l.Text == "err")
	}
	if !sawOut || !sawErr {
		t.Fatalf("missing streamed lines: %+v", lines)
	}
}

func TestCommandExecutorOverlongLineDoesNotHang(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	script := "head -c 2000000 /dev/zero | tr '\\000' a; " +
		"head -c 500000 /dev/zero | tr '\\000' b; " +
		"echo done 1>&2; exit 0"

	type outcome struct {
		code int
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		code, err := commandExecutor{}.Run(context.Background(), "/bin/sh", []string{"-c", script}, func(Line) {})
		done <- outcome{code: code, err: err}
	}()

	select {
	case got := <-done:
		if !errors.Is(got.err, bufio.ErrTooLong) {
			t.Fatalf("expected ErrTooLong, got code=%d err=%v", got.code, got.err)
		}
		if got.code != -1 {
			t.Fatalf("expected exit code -1, got %d", got.code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after an overlong output line")
	}
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	_, err := commandExecutor{}.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), nil, nil)
	if err == nil {
		t.Fatal("expected start error")
	}
}
