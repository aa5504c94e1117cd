// Package services defines shared utilities consumed by the batch pipeline
// stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (parse errors, missing REAPER, subprocess failures, nothing to process).
//
// Use these helpers when wiring new stage logic so error reporting and
// observability stay uniform across the pipeline.
package services
