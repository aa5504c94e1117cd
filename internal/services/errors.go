package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse               = errors.New("parse error")
	ErrNothingToProcess    = errors.New("nothing to process")
	ErrExternalToolMissing = errors.New("external tool missing")
	ErrSubprocess          = errors.New("subprocess failure")
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
	ErrRunInProgress       = errors.New("run already in progress")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSubprocess
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps an error to the stable label reported to observers and
// stored in run history.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrNothingToProcess):
		return "nothing_to_process"
	case errors.Is(err, ErrExternalToolMissing):
		return "external_tool_missing"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrRunInProgress):
		return "run_in_progress"
	default:
		return "subprocess_failure"
	}
}

// IsInformational reports whether err describes a run that ended without
// work rather than a failure.
func IsInformational(err error) bool {
	return errors.Is(err, ErrNothingToProcess)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
