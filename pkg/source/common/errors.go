package common

import "errors"

// ErrSourceClosed is returned by Next once a source has been closed.
var ErrSourceClosed = errors.New("sample source closed")

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// SourceError represents sample source related errors
type SourceError struct {
	Type    SourceType `json:"type"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Cause   error      `json:"-"`
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeConnection     = "CONNECTION_FAILED"
	ErrCodeStreamNotFound = "STREAM_NOT_FOUND"
	ErrCodeDecoding       = "DECODING_FAILED"
	ErrCodeClosed         = "SOURCE_CLOSED"
	ErrCodeUnsupported    = "UNSUPPORTED_SOURCE"
)

// NewSourceError creates a new source error
func NewSourceError(sourceType SourceType, code, message string, cause error) *SourceError {
	return &SourceError{
		Type:    sourceType,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsSourceError reports whether err is a SourceError carrying the given code.
func IsSourceError(err error, code string) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
