// Package kit provides the service plumbing shared by the storefront
// packages: the command error taxonomy, input validation helpers, gRPC
// status mapping, a JSON codec for gRPC, and the server runner.
package kit

import (
	"errors"
	"fmt"
	"sort"
)

// StatusCode represents the category of a command rejection.
type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
	StatusNotFound
	StatusAborted
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// CommandError is returned when a command is rejected. The state the
// command targeted is left unchanged.
type CommandError struct {
	Code    StatusCode
	Message string
	// Fields maps input field names to per-field messages, for
	// validation failures that concern several inputs at once.
	Fields map[string]string
}

func (e *CommandError) Error() string {
	return e.Message
}

// FieldNames returns the names of the failing fields in sorted order.
func (e *CommandError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewInvalidArgument creates a CommandError for invalid input.
func NewInvalidArgument(message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: message}
}

// NewInvalidArgumentf creates an InvalidArgument CommandError with a formatted message.
func NewInvalidArgumentf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewFailedPrecondition creates a CommandError for violated preconditions.
func NewFailedPrecondition(message string) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Message: message}
}

// NewFailedPreconditionf creates a CommandError with a formatted message.
func NewFailedPreconditionf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a CommandError for a missing entity.
func NewNotFound(message string) *CommandError {
	return &CommandError{Code: StatusNotFound, Message: message}
}

// NewAborted creates a CommandError for an operation that was attempted
// and failed, and may be retried.
func NewAborted(message string) *CommandError {
	return &CommandError{Code: StatusAborted, Message: message}
}

// NewFieldErrors creates an InvalidArgument CommandError carrying per-field messages.
func NewFieldErrors(message string, fields map[string]string) *CommandError {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &CommandError{Code: StatusInvalidArgument, Message: message, Fields: copied}
}

// AsCommandError unwraps err to a CommandError if it is one.
func AsCommandError(err error) (*CommandError, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}

// HasCode reports whether err is a CommandError with the given code.
func HasCode(err error, code StatusCode) bool {
	cmdErr, ok := AsCommandError(err)
	return ok && cmdErr.Code == code
}
