package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidArgument indicates a caller precondition violation, such as a
	// duplicate classifier in a classifier set
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// InvalidConfig indicates a configuration or profile file that cannot be used
	InvalidConfig ErrorCode = "INVALID_CONFIG"
	// SourceUnavailable indicates a tree source that cannot be opened
	SourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	// SourceRead indicates a failure while reading children from a tree source
	SourceRead ErrorCode = "SOURCE_READ"
	// UnsupportedFormat indicates an unknown input or output format
	UnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// InternalError indicates a broken internal invariant
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing the configuration
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Error represents a coded error with an optional cause and details
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new Error without a cause
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new Error wrapping cause
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Invalidf creates an InvalidArgument error
func Invalidf(format string, args ...any) *Error {
	return New(InvalidArgument, fmt.Sprintf(format, args...))
}

// Internalf creates an InternalError error. Callers panic with it: an
// internal error is never recoverable.
func Internalf(format string, args ...any) *Error {
	return New(InternalError, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// IsCode reports whether any error in err's chain is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.cause
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InvalidConfig: {
		{
			Type:        RunCommand,
			Command:     "treemerge classifiers",
			Description: "Print the effective classifier profile",
		},
	},
	SourceUnavailable: {
		{
			Type:        EditConfig,
			Description: "Check that the path exists and is readable",
		},
	},
	UnsupportedFormat: {
		{
			Type:        RunCommand,
			Command:     "treemerge summarize --help",
			Description: "List the supported formats",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
