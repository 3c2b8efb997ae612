// Package errors provides custom error types for the vcsync system.
// These errors enable programmatic error checking across the reconciliation
// core and map directly onto the operator-facing failure categories:
// authentication, connectivity, data quality, and per-item apply failures.
package errors

import (
	"errors"
	"fmt"
)

// Aliases for the standard library helpers so callers don't need to
// import both packages.
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Common sentinel errors for the vcsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuth indicates rejected credentials or a denied MFA approval
	ErrAuth = errors.New("authentication failed")

	// ErrConnection indicates the remote system was unreachable
	ErrConnection = errors.New("connection failed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrDataQuality indicates a malformed or ambiguous inventory record
	ErrDataQuality = errors.New("data quality problem")

	// ErrCacheEmpty indicates no cached inventory exists for a server
	ErrCacheEmpty = errors.New("no cached inventory")
)

// AuthError represents rejected credentials or a denied/expired MFA approval.
// Retrying with the same credentials will not succeed, so callers surface it
// verbatim rather than retrying.
type AuthError struct {
	Server  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthError) Error() string {
	if e.Server != "" {
		return fmt.Sprintf("authentication failed for %s: %s", e.Server, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// NewAuthError creates a new AuthError
func NewAuthError(server, message string, err error) *AuthError {
	return &AuthError{Server: server, Message: message, Err: err}
}

// ConnectionError represents an unreachable remote system or a timed-out
// request to one. The operator may re-trigger the action; the core never
// retries automatically.
type ConnectionError struct {
	Server  string
	Message string
	Timeout bool
	Err     error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("connection to %s timed out: %s", e.Server, e.Message)
	}
	return fmt.Sprintf("connection to %s failed: %s", e.Server, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConnectionError) Is(target error) bool {
	if e.Timeout && target == ErrTimeout {
		return true
	}
	return target == ErrConnection
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(server, message string, err error) *ConnectionError {
	return &ConnectionError{Server: server, Message: message, Err: err}
}

// NewTimeoutError creates a ConnectionError marked as a timeout
func NewTimeoutError(server, message string, err error) *ConnectionError {
	return &ConnectionError{Server: server, Message: message, Timeout: true, Err: err}
}

// DataQualityError represents a malformed source record or a duplicate match
// key. The offending record is skipped and the fetch or comparison continues.
type DataQualityError struct {
	Record  string
	Message string
}

// Error implements the error interface
func (e *DataQualityError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("data quality problem with record %q: %s", e.Record, e.Message)
	}
	return fmt.Sprintf("data quality problem: %s", e.Message)
}

// Is implements errors.Is support
func (e *DataQualityError) Is(target error) bool {
	return target == ErrDataQuality
}

// NewDataQualityError creates a new DataQualityError
func NewDataQualityError(record, message string) *DataQualityError {
	return &DataQualityError{Record: record, Message: message}
}

// ApplyError represents a failed write for one VM during an import or sync
// batch. It is recorded per item and never aborts the remaining batch.
type ApplyError struct {
	VM      string
	Op      string // "create" or "update"
	Message string
	Err     error
}

// Error implements the error interface
func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to %s %s: %s", e.Op, e.VM, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// NewApplyError creates a new ApplyError
func NewApplyError(vm, op string, err error) *ApplyError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ApplyError{VM: vm, Op: op, Message: message, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// Helper functions for error checking

// IsAuth checks if an error is an authentication error
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsConnection checks if an error is a connection error
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsDataQuality checks if an error is a data quality error
func IsDataQuality(err error) bool {
	return errors.Is(err, ErrDataQuality)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapConnection wraps an error as a ConnectionError
func WrapConnection(server string, err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{Server: server, Message: err.Error(), Err: err}
}

// WrapAuth wraps an error as an AuthError
func WrapAuth(server string, err error) error {
	if err == nil {
		return nil
	}
	return &AuthError{Server: server, Message: err.Error(), Err: err}
}
