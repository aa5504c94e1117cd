// Package batch runs one end-to-end conversion: resolve presets, scan the
// audio root, classify, relocate unmatched files, write the job descriptor,
// run REAPER and reconcile its verdict.
//
// All inputs travel in a RunConfig value; the Runner holds no per-run state
// beyond the single-run guard. Only one run may be active per Runner, and the
// optional lock file extends that guarantee across processes sharing a log
// directory. Filesystem changes are not transactional: files moved to the
// unmatched folder before a later failure stay moved.
package batch
