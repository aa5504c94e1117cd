// Package staging owns the scratch files a batch run creates: the temp preset
// directory regenerated on every project parse, and the job descriptor plus
// the log REAPER writes beside it. Descriptors are scoped to a single run and
// removed on every exit path; CleanStale sweeps leftovers from runs that were
// killed before their cleanup executed.
package staging
