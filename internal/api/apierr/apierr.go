// Package apierr maps domain errors to gRPC statuses and HTTP codes, so both
// transports report the same failure the same way.
package apierr

import (
	"context"
	"errors"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain is the ErrorInfo domain of every status produced here.
const Domain = "seatbooking"

const ReasonInternal = "INTERNAL"

type mapping struct {
	target error
	code   codes.Code
	reason string
}

// First match wins.
var mappings = []mapping{
	{domain.ErrInvalidSelection, codes.InvalidArgument, "INVALID_SELECTION"},
	{domain.ErrInvalidInput, codes.InvalidArgument, "INVALID_INPUT"},
	{domain.ErrIdempotencyKeyReused, codes.FailedPrecondition, "IDEMPOTENCY_KEY_REUSED"},
	{domain.ErrInvalidLayout, codes.FailedPrecondition, "INVALID_SEAT_LAYOUT"},
	{domain.ErrAttemptInProgress, codes.Aborted, "ATTEMPT_IN_PROGRESS"},
	{domain.ErrConflict, codes.Aborted, "SEAT_CONFLICT"},
	{domain.ErrNotFound, codes.NotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, codes.AlreadyExists, "ALREADY_EXISTS"},
	{domain.ErrStoreUnavailable, codes.Unavailable, "STORE_UNAVAILABLE"},
	{context.Canceled, codes.Canceled, "CANCELED"},
	{context.DeadlineExceeded, codes.DeadlineExceeded, "DEADLINE_EXCEEDED"},
}

func lookup(err error) (codes.Code, string) {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return m.code, m.reason
		}
	}
	return codes.Internal, ReasonInternal
}

func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	code, _ := lookup(err)
	return code
}

// Reason is the machine-readable reason string of err.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if st, ok := status.FromError(err); ok {
		for _, d := range st.Details() {
			if info, ok := d.(*errdetails.ErrorInfo); ok {
				return info.GetReason()
			}
		}
		return st.Code().String()
	}
	_, reason := lookup(err)
	return reason
}

func HTTPStatus(err error) int {
	return runtime.HTTPStatusFromCode(Code(err))
}

// Status converts err into a gRPC status carrying an ErrorInfo detail.
// Internal errors keep their message out of the status.
func Status(err error) *status.Status {
	if st, ok := status.FromError(err); ok {
		return st
	}
	code, reason := lookup(err)
	msg := err.Error()
	if code == codes.Internal {
		msg = "internal error"
	}
	st := status.New(code, msg)
	withInfo, detailErr := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: Domain})
	if detailErr != nil {
		return st
	}
	return withInfo
}

// GRPC returns err as a gRPC status error; nil stays nil.
func GRPC(err error) error {
	if err == nil {
		return nil
	}
	return Status(err).Err()
}

// Message is the text shown to API clients.
func Message(err error) string {
	if Code(err) == codes.Internal {
		return "internal error"
	}
	if st, ok := status.FromError(err); ok {
		return st.Message()
	}
	return err.Error()
}
