package reaper

import (
	"fmt"
	"strings"
)

// Verdict is the reconciled outcome of a conversion.
type Verdict string

const (
	Success Verdict = "success"
	Failure Verdict = "failure"
)

// Reconcile applies the success rule: exit code 0 and no stderr output.
// Any stderr, even warnings, fails the run.
func Reconcile(exitCode int, stderr string) Verdict {
	if exitCode == 0 && stderr == "" {
		return Success
	}
	return Failure
}

// Result is the terminal report for one conversion.
type Result struct {
	ExitCode int     `json:"exit_code"`
	Stderr   string  `json:"stderr,omitempty"`
	Log      string  `json:"log,omitempty"`
	LogFound bool    `json:"log_found"`
	Verdict  Verdict `json:"verdict"`
	Dropped  int64   `json:"dropped_lines,omitempty"`
}

// NewResult reconciles an outcome with the converter's log text.
func NewResult(out Outcome, log string, logFound bool) Result {
	return Result{
		ExitCode: out.ExitCode,
		Stderr:   out.Stderr,
		Log:      log,
		LogFound: logFound,
		Verdict:  Reconcile(out.ExitCode, out.Stderr),
		Dropped:  out.Dropped,
	}
}

// Succeeded reports whether the verdict is Success.
func (r Result) Succeeded() bool {
	return r.Verdict == Success
}

// Message renders the verdict with stderr and log text verbatim.
func (r Result) Message() string {
	var b strings.Builder
	if r.Succeeded() {
		b.WriteString("Batch conversion completed successfully.")
	} else {
		fmt.Fprintf(&b, "Batch conversion failed (exit code %d).", r.ExitCode)
	}
	if r.Stderr != "" {
		b.WriteString("\n\nstderr:\n")
		b.WriteString(strings.TrimRight(r.Stderr, "\n"))
	}
	if r.LogFound && strings.TrimSpace(r.Log) != "" {
		b.WriteString("\n\nREAPER log:\n")
		b.WriteString(strings.TrimRight(r.Log, "\n"))
	}
	return b.String()
}
