package client

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/kit"
)

func TestFormatEndpoint(t *testing.T) {
	cases := map[string]string{
		"localhost:50302":  "localhost:50302",
		"/tmp/shop.sock":   "unix:///tmp/shop.sock",
		"./shop.sock":      "unix://./shop.sock",
		"unix:///run/shop": "unix:///run/shop",
	}
	for in, want := range cases {
		if got := formatEndpoint(in); got != want {
			t.Errorf("formatEndpoint(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSessionCalls_requireSession(t *testing.T) {
	c := FromConn(nil)
	_, err := c.State(context.Background())
	clientErr := AsClientError(err)
	if clientErr == nil || clientErr.Kind != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := c.StartCheckout(context.Background()); AsClientError(err) == nil {
		t.Errorf("expected client error, got %v", err)
	}
}

func TestWithSession_sharesConnection(t *testing.T) {
	c := FromConn(nil)
	bound := c.WithSession("abc")
	if bound.SessionID() != "abc" {
		t.Errorf("expected session abc, got %q", bound.SessionID())
	}
	if c.SessionID() != "" {
		t.Error("expected original client to stay unbound")
	}
	if err := bound.Close(); err != nil {
		t.Errorf("expected Close on a borrowed connection to be a no-op, got %v", err)
	}
}

func TestClientError_grpcCodes(t *testing.T) {
	err := GRPCError(status.Error(codes.NotFound, "Product not found"))
	if !err.IsNotFound() {
		t.Error("expected IsNotFound")
	}
	if err.Reason() != "Product not found" {
		t.Errorf("expected server message, got %q", err.Reason())
	}
	if GRPCError(status.Error(codes.Aborted, "declined")).IsAborted() != true {
		t.Error("expected IsAborted")
	}
	if !GRPCError(status.Error(codes.FailedPrecondition, "busy")).IsPreconditionFailed() {
		t.Error("expected IsPreconditionFailed")
	}
	if !InvalidArgumentError("bad payload").IsInvalidArgument() {
		t.Error("expected IsInvalidArgument")
	}
	if TransportError(errors.New("refused")).Code() != codes.Unknown {
		t.Error("expected Unknown code for transport errors")
	}
}

type unreachableConn struct{}

func (unreachableConn) Invoke(context.Context, string, any, any, ...grpc.CallOption) error {
	return status.Error(codes.Unavailable, "connection refused")
}

func (unreachableConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, status.Error(codes.Unavailable, "connection refused")
}

func TestClientError_transport(t *testing.T) {
	if !TransportError(errors.New("refused")).IsTransportError() {
		t.Error("expected transport error")
	}
	if GRPCError(status.Error(codes.NotFound, "missing")).IsTransportError() {
		t.Error("expected NotFound not to be a transport error")
	}

	_, err := FromConn(unreachableConn{}).Categories(context.Background())
	clientErr := AsClientError(err)
	if clientErr == nil || !clientErr.IsTransportError() {
		t.Errorf("expected unreachable server to be a transport error, got %v", err)
	}
}

func TestClientError_fieldErrors(t *testing.T) {
	mapped := kit.MapCommandError(kit.NewFieldErrors("Please fix the highlighted fields",
		map[string]string{"email": "Email is required"}))
	fields := GRPCError(mapped).FieldErrors()
	if fields["email"] != "Email is required" {
		t.Errorf("expected email violation, got %v", fields)
	}
	if TransportError(mapped).FieldErrors() != nil {
		t.Error("expected no field errors on transport errors")
	}
}

func TestAsClientError_wrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), GRPCError(status.Error(codes.Internal, "boom")))
	if AsClientError(wrapped) == nil {
		t.Error("expected to unwrap ClientError")
	}
	if AsClientError(errors.New("plain")) != nil {
		t.Error("expected nil for plain error")
	}
}
