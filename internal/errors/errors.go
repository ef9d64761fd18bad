// Package errors defines the cycle-scoped error taxonomy of the capture pipeline.
// Every failure aborts only the current capture cycle; none is fatal to the process.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a pipeline failure
type ErrorCode string

const (
	CaptureFailure       ErrorCode = "CAPTURE_FAILURE"
	EngineNotReady       ErrorCode = "ENGINE_NOT_READY"
	NoTextDetected       ErrorCode = "NO_TEXT_DETECTED"
	CorpusUnavailable    ErrorCode = "CORPUS_UNAVAILABLE"
	CatalogLookupFailure ErrorCode = "CATALOG_LOOKUP_FAILURE"
	ItemNotFound         ErrorCode = "ITEM_NOT_FOUND"
)

// AppError is a structured pipeline error
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code so sentinel comparisons work.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// New creates an AppError.
func New(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// Newf creates an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Cause: err}
}

// Wrapf wraps err with a code and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Sentinels for errors.Is checks.
var (
	ErrCaptureFailure       = &AppError{Code: CaptureFailure}
	ErrEngineNotReady       = &AppError{Code: EngineNotReady}
	ErrNoTextDetected       = &AppError{Code: NoTextDetected}
	ErrCorpusUnavailable    = &AppError{Code: CorpusUnavailable}
	ErrCatalogLookupFailure = &AppError{Code: CatalogLookupFailure}
	ErrItemNotFound         = &AppError{Code: ItemNotFound}
)

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// UserMessage returns the short text shown to the user for a failed cycle.
func UserMessage(err error) string {
	switch CodeOf(err) {
	case CaptureFailure:
		return "could not read the screen region"
	case EngineNotReady:
		return "OCR engine is still starting, try again shortly"
	case NoTextDetected:
		return "could not detect an item name"
	case CatalogLookupFailure:
		return "price lookup failed"
	case ItemNotFound:
		return "no item found, try the full item name"
	default:
		return err.Error()
	}
}
