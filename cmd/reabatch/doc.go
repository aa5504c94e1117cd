// Package main hosts the reabatch CLI entrypoint and command graph.
//
// Commands resolve configuration once through commandContext, then hand the
// work to internal packages: rpp for presets, scanner and classify for
// previews, batch for complete runs, history for past runs and preflight for
// the doctor report. Keep commands thin; new behaviour belongs in internal/.
package main
