package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// WillowError is the interface for all structured errors in willow.
// It extends the standard error interface with classification context
// so callers can decide how to surface or retry a failure.
type WillowError interface {
	error

	// Code returns the specific error code identifying the failure type.
	Code() ErrorCode

	// Category returns the error category for retry/handling decisions.
	Category() ErrorCategory

	// Retryable returns true if the operation may succeed on retry.
	Retryable() bool

	// Unwrap returns the underlying error, if any.
	Unwrap() error
}

// Error is the concrete implementation of WillowError.
type Error struct {
	code      ErrorCode
	category  ErrorCategory
	message   string
	cause     error
	retryable *bool // nil means use default based on category
	timestamp time.Time
	taskID    int64 // related task, if applicable (0 = none)
	provider  string
}

// Ensure Error implements WillowError and json.Marshaler.
var (
	_ WillowError    = (*Error)(nil)
	_ json.Marshaler = (*Error)(nil)
)

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.category
}

// Retryable returns whether this error is retryable.
func (e *Error) Retryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	return e.category.IsRetryable()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Timestamp returns when the error occurred.
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// TaskID returns the related task ID, or 0 if not task-scoped.
func (e *Error) TaskID() int64 {
	return e.taskID
}

// Provider returns the LLM provider name, if the failure is provider-scoped.
func (e *Error) Provider() string {
	return e.provider
}

// errorJSON is the JSON representation of an Error.
type errorJSON struct {
	Code      ErrorCode     `json:"code"`
	Category  ErrorCategory `json:"category"`
	Message   string        `json:"message"`
	Cause     string        `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Timestamp string        `json:"timestamp,omitempty"`
	TaskID    int64         `json:"task_id,omitempty"`
	Provider  string        `json:"provider,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	j := errorJSON{
		Code:      e.code,
		Category:  e.category,
		Message:   e.message,
		Retryable: e.Retryable(),
		TaskID:    e.taskID,
		Provider:  e.provider,
	}
	if e.cause != nil {
		j.Cause = e.cause.Error()
	}
	if !e.timestamp.IsZero() {
		j.Timestamp = e.timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(j)
}

// Option is a functional option for configuring an Error.
type Option func(*Error)

// WithCategory overrides the default category.
func WithCategory(cat ErrorCategory) Option {
	return func(e *Error) {
		e.category = cat
	}
}

// WithRetryable explicitly sets whether the error is retryable.
func WithRetryable(retryable bool) Option {
	return func(e *Error) {
		e.retryable = &retryable
	}
}

// WithTaskID sets the related task ID.
func WithTaskID(id int64) Option {
	return func(e *Error) {
		e.taskID = id
	}
}

// WithProvider sets the LLM provider name.
func WithProvider(name string) Option {
	return func(e *Error) {
		e.provider = name
	}
}

// WithCause sets the underlying cause.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string, opts ...Option) *Error {
	e := &Error{
		code:      code,
		category:  code.DefaultCategory(),
		message:   message,
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new Error wrapping an underlying cause.
func Wrap(code ErrorCode, message string, cause error, opts ...Option) *Error {
	opts = append([]Option{WithCause(cause)}, opts...)
	return New(code, message, opts...)
}

// CodeOf extracts the error code from err, or ErrCodeInternal if err is
// not a structured error.
func CodeOf(err error) ErrorCode {
	var we WillowError
	if errors.As(err, &we) {
		return we.Code()
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var we WillowError
	if errors.As(err, &we) {
		return we.Code() == code
	}
	return false
}

// IsRetryable reports whether err may succeed on retry. Unstructured
// errors are treated as non-retryable.
func IsRetryable(err error) bool {
	var we WillowError
	if errors.As(err, &we) {
		return we.Retryable()
	}
	return false
}
