// Package errors provides structured error handling for Vortex.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorType categorizes a VortexError per the error kinds of §7.
type ErrorType string

const (
	// ErrorTypeInvalidArgument covers caller-provided inputs that violate a
	// stated precondition (mismatched dtypes, negative length, ...).
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeOutOfBounds covers index vs length violations.
	ErrorTypeOutOfBounds ErrorType = "out_of_bounds"
	// ErrorTypeMismatchedTypes covers expected-vs-actual dtype mismatches.
	ErrorTypeMismatchedTypes ErrorType = "mismatched_types"
	// ErrorTypeNotImplemented covers a kernel missing for an encoding with
	// no canonical fallback (e.g. the opaque encoding).
	ErrorTypeNotImplemented ErrorType = "not_implemented"
	// ErrorTypeSerialization covers malformed footers, unknown versions,
	// bad flatbuffers and truncated segments.
	ErrorTypeSerialization ErrorType = "serialization"
	// ErrorTypeIO is delegated from a segment source; retryable at the
	// caller's discretion.
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeOverflow covers numeric overflow in a checked accumulator.
	ErrorTypeOverflow ErrorType = "overflow"
)

// VortexError is a comprehensive error carrying enough structural detail to
// diagnose file-format and compute failures.
type VortexError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
	Retryable  bool                   `json:"retryable"`
}

// Error implements the error interface.
func (e *VortexError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	fmt.Fprintf(&b, " (%s)", e.Code)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %s", e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *VortexError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target of the same type and code.
func (e *VortexError) Is(target error) bool {
	if t, ok := target.(*VortexError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext attaches a structured diagnostic field.
func (e *VortexError) WithContext(key string, value interface{}) *VortexError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *VortexError) withStackTrace() *VortexError {
	e.StackTrace = captureStackTrace()
	return e
}

// New creates a new VortexError.
func New(errType ErrorType, code, message string) *VortexError {
	return &VortexError{
		Type:      errType,
		Code:      code,
		Message:   message,
		Component: getCallerComponent(),
	}
}

// Wrap wraps an existing error with Vortex error information.
func Wrap(err error, errType ErrorType, code, message string) *VortexError {
	if err == nil {
		return nil
	}
	return &VortexError{
		Type:      errType,
		Code:      code,
		Message:   message,
		Cause:     err,
		Component: getCallerComponent(),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, errType ErrorType, code, format string, args ...interface{}) *VortexError {
	return Wrap(err, errType, code, fmt.Sprintf(format, args...))
}

// InvalidArgument reports a precondition violation.
func InvalidArgument(operation, message string) *VortexError {
	return New(ErrorTypeInvalidArgument, "INVALID_ARGUMENT", message).
		WithContext("operation", operation).withStackTrace()
}

// OutOfBounds reports an index outside [min, max).
func OutOfBounds(operation string, index, min, max int) *VortexError {
	return New(ErrorTypeOutOfBounds, "OUT_OF_BOUNDS",
		fmt.Sprintf("index %d out of bounds [%d, %d)", index, min, max)).
		WithContext("operation", operation).
		WithContext("index", index).
		WithContext("min", min).
		WithContext("max", max).
		withStackTrace()
}

// MismatchedTypes reports an expected-vs-actual dtype mismatch.
func MismatchedTypes(operation, expected, actual string) *VortexError {
	return New(ErrorTypeMismatchedTypes, "MISMATCHED_TYPES",
		fmt.Sprintf("expected dtype %s, got %s", expected, actual)).
		WithContext("operation", operation).
		WithContext("expected", expected).
		WithContext("actual", actual).
		withStackTrace()
}

// NotImplemented reports a missing kernel with no canonical fallback.
func NotImplemented(operation, encoding string) *VortexError {
	return New(ErrorTypeNotImplemented, "NOT_IMPLEMENTED",
		fmt.Sprintf("operation %q not implemented for encoding %q", operation, encoding)).
		WithContext("operation", operation).
		WithContext("encoding", encoding).
		withStackTrace()
}

// Serialization reports a malformed on-disk structure.
func Serialization(component, message string) *VortexError {
	return New(ErrorTypeSerialization, "SERIALIZATION_ERROR", message).
		WithContext("component", component).withStackTrace()
}

// IO wraps a segment-source error, marked retryable by default.
func IO(operation string, cause error) *VortexError {
	e := Wrap(cause, ErrorTypeIO, "IO_ERROR", fmt.Sprintf("io failure during %s", operation)).
		WithContext("operation", operation)
	e.Retryable = true
	return e.withStackTrace()
}

// Overflow reports a checked-arithmetic overflow. compute.Sum returns this
// error when its integer accumulator overflows; it does not return a null
// sum in that case.
func Overflow(operation string) *VortexError {
	return New(ErrorTypeOverflow, "OVERFLOW",
		fmt.Sprintf("numeric overflow in %s", operation)).
		WithContext("operation", operation).withStackTrace()
}

// Is reports whether err, or an error it wraps, is a VortexError of type t.
func Is(err error, t ErrorType) bool {
	var ve *VortexError
	if As(err, &ve) {
		return ve.Type == t
	}
	return false
}

// As is a thin re-export point so callers don't need both "errors" and
// "github.com/vortex-db/vortex/internal/errors" imported under different
// names. It walks err's single-error Unwrap chain itself and stores the
// first *VortexError found in target; Unwrap() []error is not followed.
func As(err error, target **VortexError) bool {
	for err != nil {
		if ve, ok := err.(*VortexError); ok {
			*target = ve
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func getCallerComponent() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	funcName := runtime.FuncForPC(pc).Name()
	parts := strings.Split(funcName, "/")
	if len(parts) > 0 {
		lastPart := parts[len(parts)-1]
		if dotIndex := strings.LastIndex(lastPart, "."); dotIndex != -1 {
			return lastPart[:dotIndex]
		}
	}
	return "unknown"
}

func captureStackTrace() []string {
	var trace []string
	for i := 2; i < 10; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		funcName := runtime.FuncForPC(pc).Name()
		if idx := strings.LastIndex(file, "/"); idx != -1 {
			file = file[idx+1:]
		}
		trace = append(trace, fmt.Sprintf("%s (%s:%d)", funcName, file, line))
	}
	return trace
}

// MultiError aggregates independent failures, used by the scan engine to
// report per-split failures without canceling sibling splits (§7).
type MultiError struct {
	Errors []error
}

// NewMultiError creates an empty MultiError.
func NewMultiError() *MultiError {
	return &MultiError{}
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	messages := make([]string, len(m.Errors))
	for i, err := range m.Errors {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(m.Errors), strings.Join(messages, "; "))
}

// Add appends a non-nil error to the collection.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors reports whether any error was added.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ToError returns nil if no errors were added, else the MultiError itself.
func (m *MultiError) ToError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}
