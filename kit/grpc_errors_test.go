package kit

import (
	"errors"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

func TestMapCommandError_invalidArgument_mapsToGRPCInvalidArgument(t *testing.T) {
	err := MapCommandError(NewInvalidArgument("bad field"))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected gRPC status error")
	}
	if st.Code() != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", st.Code())
	}
	if st.Message() != "bad field" {
		t.Errorf("expected 'bad field', got %q", st.Message())
	}
}

func TestMapCommandError_failedPrecondition_mapsToGRPCFailedPrecondition(t *testing.T) {
	err := MapCommandError(NewFailedPrecondition("not ready"))
	st, _ := status.FromError(err)
	if st.Code() != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", st.Code())
	}
}

func TestMapCommandError_notFound_mapsToGRPCNotFound(t *testing.T) {
	err := MapCommandError(NewNotFound("no such product"))
	st, _ := status.FromError(err)
	if st.Code() != codes.NotFound {
		t.Errorf("expected NotFound, got %v", st.Code())
	}
}

func TestMapCommandError_aborted_mapsToGRPCAborted(t *testing.T) {
	err := MapCommandError(NewAborted("payment declined"))
	st, _ := status.FromError(err)
	if st.Code() != codes.Aborted {
		t.Errorf("expected Aborted, got %v", st.Code())
	}
}

func TestMapCommandError_fieldErrors_attachBadRequest(t *testing.T) {
	err := MapCommandError(NewFieldErrors("shipping details incomplete", map[string]string{
		"email": "Email is required",
		"city":  "City is required",
	}))
	st, _ := status.FromError(err)

	want := &errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: "city", Description: "City is required"},
			{Field: "email", Description: "Email is required"},
		},
	}
	details := st.Details()
	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
	got, ok := details[0].(*errdetails.BadRequest)
	if !ok {
		t.Fatalf("expected BadRequest detail, got %T", details[0])
	}
	if !proto.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	fields := FieldViolations(err)
	if fields["email"] != "Email is required" {
		t.Errorf("expected email violation, got %v", fields)
	}
}

func TestMapCommandError_statusError_passesThrough(t *testing.T) {
	original := status.Error(codes.Unauthenticated, "who are you")
	err := MapCommandError(original)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestMapCommandError_nonCommandError_mapsToInternal(t *testing.T) {
	err := MapCommandError(errors.New("something broke"))
	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected gRPC status error")
	}
	if st.Code() != codes.Internal {
		t.Errorf("expected Internal, got %v", st.Code())
	}
}

func TestMapCommandError_nil(t *testing.T) {
	if err := MapCommandError(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestFieldViolations_plainError(t *testing.T) {
	if fields := FieldViolations(errors.New("plain")); fields != nil {
		t.Errorf("expected nil, got %v", fields)
	}
}
