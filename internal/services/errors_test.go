package services_test

import (
	"errors"
	"strings"
	"testing"

	"reabatch/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrParse, "presets", "read", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"presets", "read", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected subprocess marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrParse, "presets", "", "", nil), "parse_error"},
		{services.Wrap(services.ErrNothingToProcess, "jobfile", "", "", nil), "nothing_to_process"},
		{services.Wrap(services.ErrExternalToolMissing, "reaper", "", "", nil), "external_tool_missing"},
		{services.Wrap(services.ErrValidation, "rules", "", "", nil), "validation_error"},
		{services.ErrRunInProgress, "run_in_progress"},
		{errors.New("unknown"), "subprocess_failure"},
	}
	for _, tc := range cases {
		if got := services.FailureKind(tc.err); got != tc.want {
			t.Errorf("FailureKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsInformational(t *testing.T) {
	if !services.IsInformational(services.Wrap(services.ErrNothingToProcess, "jobfile", "build", "", nil)) {
		t.Fatal("expected nothing-to-process to be informational")
	}
	if services.IsInformational(services.ErrSubprocess) {
		t.Fatal("expected subprocess failure to be a failure")
	}
}
