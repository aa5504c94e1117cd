package logging

import (
	"log/slog"
	"time"
)

// Attr is a structured log field.
type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error records err under "error"; a nil err is written as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a no-op base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type requiredField struct {
	key      string
	fallback string
}

var (
	warnFields = []requiredField{
		{FieldErrorHint, "check the log for details"},
		{FieldImpact, "the run continued with reduced output"},
	}
	errorFields = []requiredField{
		{FieldErrorHint, "check the log for details"},
	}
)

// WarnWithContext logs a warning carrying event_type, error_hint and impact.
// Fields missing from attrs get generic values.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, withRequired(attrs, eventType, warnFields)...)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, withRequired(attrs, eventType, errorFields)...)
}

func withRequired(attrs []Attr, eventType string, required []requiredField) []any {
	present := make(map[string]bool, len(attrs))
	args := make([]any, 0, len(attrs)+len(required)+1)
	for _, a := range attrs {
		present[a.Key] = true
		args = append(args, a)
	}
	if !present[FieldEventType] {
		args = append(args, String(FieldEventType, eventType))
	}
	for _, f := range required {
		if !present[f.key] {
			args = append(args, String(f.key, f.fallback))
		}
	}
	return args
}

func toArgs(attrs []Attr) []any {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return args
}
