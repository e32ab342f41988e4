package log

import (
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// withError attaches err to the event, plus the stack recorded by
// cockroachdb/errors and, for the structured error types, their fields.
func withError(e *zerolog.Event, err error) *zerolog.Event {
	if e == nil {
		return nil
	}
	e = e.Err(err)
	if stacktrace := extractStacktrace(err); stacktrace != "" {
		e = e.Str(StacktraceAttrKey, stacktrace)
	}
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		e = e.Object("error_detail", m)
	}
	return e
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
