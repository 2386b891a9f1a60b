// Package errors defines the typed errors portsweep surfaces to callers.
// Every error carries a code that places it in the scan's failure taxonomy:
// recoverable codes fold into a closed-port result, fatal codes stop the run.
package errors

import (
	"fmt"
)

// ErrorCode classifies an error within the scan failure taxonomy.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"

	// Network and probing errors.
	CodeConnectFailed     ErrorCode = "CONNECT_FAILED"
	CodeHostUnreachable   ErrorCode = "HOST_UNREACHABLE"
	CodeResolveFailed     ErrorCode = "RESOLVE_FAILED"
	CodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"
	CodeScanAborted       ErrorCode = "SCAN_ABORTED"
)

// coder is satisfied by every typed error in this package.
type coder interface {
	errorCode() ErrorCode
}

// ScanError is an error raised while probing a target.
type ScanError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
	Context map[string]interface{}
}

func (e *ScanError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *ScanError) Unwrap() error { return e.Cause }

func (e *ScanError) errorCode() ErrorCode { return e.Code }

// WithContext attaches a key/value pair for diagnostics and returns the
// error for chaining.
func (e *ScanError) WithContext(key string, value interface{}) *ScanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewScanError creates a scan error with a code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{Code: code, Message: message, Context: map[string]interface{}{}}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	e := NewScanError(code, message)
	e.Target = target
	return e
}

// WrapScanError wraps an underlying error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	e := NewScanError(code, message)
	e.Cause = err
	return e
}

// WrapScanErrorWithTarget wraps an underlying error with target information.
func WrapScanErrorWithTarget(code ErrorCode, message, target string, err error) *ScanError {
	e := NewScanErrorWithTarget(code, message, target)
	e.Cause = err
	return e
}

// ConfigError is an error raised while loading or validating configuration.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *ConfigError) Unwrap() error { return e.Cause }

func (e *ConfigError) errorCode() ErrorCode { return e.Code }

// NewConfigError creates a configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{Code: code, Message: message}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{Code: code, Message: message, Field: field, Value: value}
}

// WrapConfigError wraps an underlying error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{Code: code, Message: message, Cause: err}
}

// GetCode extracts the error code, or CodeUnknown for untyped errors.
func GetCode(err error) ErrorCode {
	if c, ok := err.(coder); ok {
		return c.errorCode()
	}
	return CodeUnknown
}

// IsCode reports whether an error carries the given code.
func IsCode(err error, code ErrorCode) bool {
	c, ok := err.(coder)
	return ok && c.errorCode() == code
}

// IsRecoverable reports whether an error can be folded into a closed-port
// result without stopping the scan.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case CodeTimeout, CodeConnectFailed, CodeHostUnreachable:
		return true
	}
	return false
}

// IsFatal reports whether an error must stop the entire scan rather than
// being attributed to one port.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeResourceExhausted, CodeConfiguration:
		return true
	}
	return false
}

// ErrResourceExhausted creates the fatal error raised when the operating
// system refuses to create new sockets. The message is user-facing and tells
// the operator how to recover.
func ErrResourceExhausted(batchSize int, err error) *ScanError {
	suggested := batchSize / 2
	if suggested < 1 {
		suggested = 1
	}
	msg := fmt.Sprintf("too many open files: the system refused to create more sockets; "+
		"reduce the batch size (current: %d, try --batch-size %d)", batchSize, suggested)
	return WrapScanError(CodeResourceExhausted, msg, err)
}

// ErrScanTimeout creates an error for probe timeouts.
func ErrScanTimeout(target string) *ScanError {
	return NewScanErrorWithTarget(CodeTimeout, "Connection attempt timed out", target)
}

// ErrConnectFailed creates an error for refused or unreachable connections.
func ErrConnectFailed(target string, err error) *ScanError {
	return WrapScanErrorWithTarget(CodeConnectFailed, "Connection attempt failed", target, err)
}

// ErrResolveFailed creates an error for hostname resolution failures.
func ErrResolveFailed(host string, err error) *ScanError {
	return WrapScanErrorWithTarget(CodeResolveFailed, "Failed to resolve host", host, err)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}
