// Package utils provides the leveled logger and structured error
// taxonomy shared across the scraper service.
package utils

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode categorizes failures across the scrape pipeline.
type ErrorCode string

const (
	// Page acquisition
	ErrCodeFetchFailed   ErrorCode = "FETCH_FAILED"
	ErrCodeMetadataParse ErrorCode = "METADATA_PARSE"

	// Stream resolution
	ErrCodeConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrCodeNoStreamFound ErrorCode = "NO_STREAM_FOUND"

	// Media processing
	ErrCodeDownloadFailed      ErrorCode = "DOWNLOAD_FAILED"
	ErrCodeNormalizationFailed ErrorCode = "NORMALIZATION_FAILED"

	// Collaborators
	ErrCodeUploadFailed ErrorCode = "UPLOAD_FAILED"

	// Infrastructure
	ErrCodeWorkspace     ErrorCode = "WORKSPACE"
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StructuredError provides rich error information so callers can decide
// whether a failure is request-fatal or asset-local.
type StructuredError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so callers can test against sentinel instances.
func (e *StructuredError) Is(target error) bool {
	if se, ok := target.(*StructuredError); ok {
		return e.Code == se.Code
	}
	return false
}

// WithContext adds contextual information to the error.
func (e *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable marks whether the operation may be retried.
func (e *StructuredError) WithRetryable(retryable bool) *StructuredError {
	e.Retryable = retryable
	return e
}

// NewError creates a structured error with the given code and message.
func NewError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WrapError creates a structured error wrapping an underlying cause.
func WrapError(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// CodeOf extracts the error code from err, walking the wrap chain.
// Returns ErrCodeInternal when no structured error is present.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
