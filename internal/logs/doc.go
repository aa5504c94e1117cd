// Package logs reads the application log and per-run REAPER transcripts for
// the CLI.
//
// Last returns the final lines of a file with bounded memory; Follow polls
// for appended lines until its context ends. Transcript resolves a run ID,
// or an unambiguous prefix of one, to its transcript under log_dir/runs.
package logs
