package client

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/kit"
)

// ClientError represents errors from client operations.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// ErrorKind categorizes client errors.
type ErrorKind int

const (
	// ErrTransport indicates a connection or transport-level failure.
	ErrTransport ErrorKind = iota
	// ErrGRPC indicates a gRPC error from the server.
	ErrGRPC
	// ErrInvalidArgument indicates an invalid argument from the caller.
	ErrInvalidArgument
	// ErrNoSession indicates a session call on a client with no session.
	ErrNoSession
)

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Code returns the gRPC status code if this is a gRPC error.
func (e *ClientError) Code() codes.Code {
	if e.Kind != ErrGRPC || e.Cause == nil {
		return codes.Unknown
	}
	if s, ok := status.FromError(e.Cause); ok {
		return s.Code()
	}
	return codes.Unknown
}

// Reason returns the server's message for a gRPC error.
func (e *ClientError) Reason() string {
	if s, ok := status.FromError(e.Cause); ok && e.Kind == ErrGRPC {
		return s.Message()
	}
	return e.Message
}

// FieldErrors returns the per-field validation messages the server
// attached, or nil.
func (e *ClientError) FieldErrors() map[string]string {
	if e.Kind != ErrGRPC {
		return nil
	}
	return kit.FieldViolations(e.Cause)
}

func (e *ClientError) IsNotFound() bool {
	return e.Code() == codes.NotFound
}

func (e *ClientError) IsPreconditionFailed() bool {
	return e.Code() == codes.FailedPrecondition
}

func (e *ClientError) IsInvalidArgument() bool {
	return e.Kind == ErrInvalidArgument || e.Code() == codes.InvalidArgument
}

// IsAborted reports a declined payment.
func (e *ClientError) IsAborted() bool {
	return e.Code() == codes.Aborted
}

// IsTransportError reports whether the server could not be reached,
// either before a call was made or as an Unavailable status.
func (e *ClientError) IsTransportError() bool {
	return e.Kind == ErrTransport || e.Code() == codes.Unavailable
}

// TransportError wraps a transport error.
func TransportError(err error) *ClientError {
	return &ClientError{Kind: ErrTransport, Message: "transport error", Cause: err}
}

// GRPCError wraps a gRPC error.
func GRPCError(err error) *ClientError {
	return &ClientError{Kind: ErrGRPC, Message: "grpc error", Cause: err}
}

// InvalidArgumentError creates an invalid argument error.
func InvalidArgumentError(msg string) *ClientError {
	return &ClientError{Kind: ErrInvalidArgument, Message: msg}
}

// AsClientError extracts a ClientError from an error chain.
func AsClientError(err error) *ClientError {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return nil
}
