// Package preflight provides readiness checks for the REAPER executable and
// the filesystem paths reabatch depends on.
//
// The doctor command runs every check and prints the results. Checks never
// modify anything; a missing directory is reported, not created.
package preflight
