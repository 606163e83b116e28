package ingest

import "fmt"

// ErrorCode represents specific ingestion error types.
type ErrorCode string

const (
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrSchemaDetection   ErrorCode = "SCHEMA_DETECTION"
	ErrUnreadableSource  ErrorCode = "UNREADABLE_SOURCE"
	ErrEmptyTable        ErrorCode = "EMPTY_TABLE"
)

// Error is a structured error for ingestion failures. An error aborts the
// contribution of one source file; it never corrupts transactions already
// ingested from other files in the same batch.
type Error struct {
	Code    ErrorCode
	Message string
	// Headers carries the normalized headers that were inspected when
	// schema detection failed, for diagnosability.
	Headers []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Headers) > 0 {
		return fmt.Sprintf("[%s] %s (headers inspected: %v)", e.Code, e.Message, e.Headers)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
