// Package errors provides standardized error handling for batch DOI registration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Batch level
	ErrCodeCSVHeaderInvalid ErrorCode = "CSV_HEADER_INVALID"
	ErrCodeCSVReadFailed    ErrorCode = "CSV_READ_FAILED"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"

	// Record level
	ErrCodeRecordValidationFailed ErrorCode = "RECORD_VALIDATION_FAILED"
	ErrCodePayloadInvalid         ErrorCode = "PAYLOAD_INVALID"

	// Identifier allocation
	ErrCodeAllocationExhausted ErrorCode = "IDENTIFIER_ALLOCATION_EXHAUSTED"
	ErrCodeLedgerUnavailable   ErrorCode = "LEDGER_UNAVAILABLE"

	// Registration service
	ErrCodeDataciteUnavailable ErrorCode = "DATACITE_UNAVAILABLE"
	ErrCodeDOIConflict         ErrorCode = "DOI_CONFLICT"
	ErrCodeDOICreateFailed     ErrorCode = "DOI_CREATE_FAILED"
	ErrCodeDOIPublishFailed    ErrorCode = "DOI_PUBLISH_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCSVHeaderInvalidError creates a batch-fatal schema error.
func NewCSVHeaderInvalidError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCSVHeaderInvalid,
		Message:   "CSV header does not match the required columns",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCSVReadFailedError wraps an IO or parse failure of the input file.
func NewCSVReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCSVReadFailed,
		Message:   "Failed to read CSV input",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordValidationFailedError creates a record-level validation error.
func NewRecordValidationFailedError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordValidationFailed,
		Message:   "Record failed validation",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadInvalidError is returned when the built registration payload
// does not satisfy the DataCite schema.
func NewPayloadInvalidError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Registration payload failed schema validation",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllocationExhaustedError creates the error for an allocator that could
// not find a free identifier within its attempt budget.
func NewAllocationExhaustedError(prefix string, attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeAllocationExhausted,
		Message:   "No unregistered identifier found within attempt limit",
		Details:   fmt.Sprintf("prefix: %s, attempts: %d", prefix, attempts),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerUnavailableError creates a retryable reservation store error.
func NewLedgerUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerUnavailable,
		Message:   "Identifier reservation store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDataciteUnavailableError creates a retryable remote service error.
func NewDataciteUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataciteUnavailable,
		Message:   "DataCite request failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDOIConflictError creates a non-retryable conflict error.
func NewDOIConflictError(doi string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDOIConflict,
		Message:   "DOI already registered",
		Details:   fmt.Sprintf("doi: %s", doi),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDOICreateFailedError creates a DOI creation error.
func NewDOICreateFailedError(doi string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDOICreateFailed,
		Message:   "Failed to create DOI",
		Details:   fmt.Sprintf("doi: %s, error: %s", doi, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDOIPublishFailedError creates a DOI publish error. The DOI exists as a
// draft when this is returned.
func NewDOIPublishFailedError(doi string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDOIPublishFailed,
		Message:   "DOI created but not published",
		Details:   fmt.Sprintf("doi: %s, error: %s", doi, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send notification",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError normalizes any error to a StandardError.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return errors.As(err, &stdErr) && stdErr.Code == code
}

// IsBatchFatal reports whether an error should stop the whole batch.
func IsBatchFatal(code ErrorCode) bool {
	switch code {
	case ErrCodeCSVHeaderInvalid, ErrCodeCSVReadFailed, ErrCodeConfigInvalid:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIG"):
		return "configuration"
	case strings.HasPrefix(codeStr, "CSV"):
		return "input"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "validation"
	case strings.Contains(codeStr, "ALLOCATION") || strings.Contains(codeStr, "LEDGER"):
		return "allocation"
	case strings.Contains(codeStr, "DATACITE") || strings.HasPrefix(codeStr, "DOI"):
		return "remote"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "notification"
	default:
		return "other"
	}
}
