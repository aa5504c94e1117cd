package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"reabatch/internal/preflight"
	"reabatch/internal/reaper"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("REAPER", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "REAPER:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Render", statusOK, "success", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightKind(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   statusKind
	}{
		{preflight.Result{Passed: true}, statusOK},
		{preflight.Result{Optional: true}, statusWarn},
		{preflight.Result{}, statusError},
	}
	for _, tt := range tests {
		if got := preflightKind(tt.result); got != tt.want {
			t.Fatalf("preflightKind(%+v) = %v, want %v", tt.result, got, tt.want)
		}
	}
}

func TestVerdictKind(t *testing.T) {
	if verdictKind(reaper.Success) != statusOK || verdictKind(reaper.Failure) != statusError {
		t.Fatal("unexpected verdict mapping")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]column{{title: "A"}, {title: "B", align: alignRight}}, [][]string{{"only"}})
	if !strings.Contains(out, "only") {
		t.Fatalf("expected row content, got:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}
