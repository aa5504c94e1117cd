// Package notifications delivers batch run outcomes to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether alerts are enabled. Delivery failures
// are returned to the caller, which logs them; a failed alert never changes a
// run's verdict.
package notifications
