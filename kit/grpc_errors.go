package kit

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCCode returns the gRPC code for a StatusCode.
func (s StatusCode) GRPCCode() codes.Code {
	switch s {
	case StatusInvalidArgument:
		return codes.InvalidArgument
	case StatusFailedPrecondition:
		return codes.FailedPrecondition
	case StatusNotFound:
		return codes.NotFound
	case StatusAborted:
		return codes.Aborted
	default:
		return codes.Unknown
	}
}

// MapCommandError converts a CommandError to a gRPC status error.
//
// Per-field messages are attached as a BadRequest detail. Errors that
// already carry a gRPC status pass through; anything else is wrapped as
// Internal.
func MapCommandError(err error) error {
	if err == nil {
		return nil
	}
	if cmdErr, ok := AsCommandError(err); ok {
		st := status.New(cmdErr.Code.GRPCCode(), cmdErr.Message)
		if len(cmdErr.Fields) > 0 {
			br := &errdetails.BadRequest{}
			for _, name := range cmdErr.FieldNames() {
				br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
					Field:       name,
					Description: cmdErr.Fields[name],
				})
			}
			if detailed, derr := st.WithDetails(br); derr == nil {
				st = detailed
			}
		}
		return st.Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}

// FieldViolations extracts the per-field messages from a gRPC status error
// produced by MapCommandError. Returns nil when there are none.
func FieldViolations(err error) map[string]string {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	var fields map[string]string
	for _, detail := range st.Details() {
		br, ok := detail.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		if fields == nil {
			fields = make(map[string]string, len(br.GetFieldViolations()))
		}
		for _, v := range br.GetFieldViolations() {
			fields[v.GetField()] = v.GetDescription()
		}
	}
	return fields
}
