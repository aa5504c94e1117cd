// Package reaper launches REAPER's batch converter and turns what it
// produces into a verdict.
//
// A conversion runs asynchronously as a Task. Output lines are delivered on
// a bounded channel; when the consumer falls behind, lines are dropped and
// counted rather than stalling the subprocess. Stderr is buffered in full
// regardless, because the verdict depends on it: REAPER can exit 0 while
// printing warnings for files it silently skipped, so a run only succeeds
// when the exit code is 0 and stderr is empty.
package reaper
