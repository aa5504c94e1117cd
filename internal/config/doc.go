// Package config loads, normalizes, and validates reabatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REABATCH_REAPER. The Config type centralizes every knob the CLI and the batch
// runner need: REAPER location and flags, the project file that supplies FX
// chains, the audio root, output settings, and the ordered keyword rules.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lowercase keywords, and clear validation errors.
package config
