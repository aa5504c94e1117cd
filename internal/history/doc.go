// Package history persists a record of every batch run in SQLite.
//
// Records are written once, when a run reaches a terminal state, and are
// read back by the history command. The database lives in the log directory
// and uses WAL mode with a busy timeout so a CLI listing can read while a run
// is recording.
package history
