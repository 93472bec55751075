// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
// The cause should carry the offending quantity (got vs required).
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data quality errors, fatal for the instrument's run
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "not enough rows for analysis"}
	ErrLowLiquidity     = &Error{Code: "LOW_LIQUIDITY", Message: "average volume below threshold"}
	ErrMissingColumn    = &Error{Code: "MISSING_COLUMN", Message: "required column absent"}

	// Alignment errors
	ErrInsufficientOverlap = &Error{Code: "INSUFFICIENT_OVERLAP", Message: "series share no usable date range"}

	// Model errors
	ErrInsufficientTrainingData = &Error{Code: "INSUFFICIENT_TRAINING_DATA", Message: "training partition too small"}
	ErrFitFailed                = &Error{Code: "FIT_FAILED", Message: "model fit failed"}

	// Collector errors
	ErrCollectorFailed = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}
	ErrNoData          = &Error{Code: "NO_DATA", Message: "no data available"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Collaborator errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "artifact storage failed"}
	ErrReportFailed  = &Error{Code: "REPORT_FAILED", Message: "report rendering failed"}
	ErrAnalystFailed = &Error{Code: "ANALYST_FAILED", Message: "analyst commentary failed"}
)
