// Package logging assembles structured slog loggers and formatting helpers used
// across reabatch.
//
// It owns the console and JSON handlers, level and output plumbing, log file
// retention, and context-aware helpers that tag lines with the batch run ID
// and pipeline stage. Warnings that the pipeline tolerates (unreadable
// directories, failed moves, cleanup failures) go through WarnWithContext so
// every one carries an event type, a hint, and its impact.
package logging
