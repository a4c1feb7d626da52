package scatterd

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/internal/scatter"
	"github.com/lgpang/smash/internal/xsection"
)

// grpcCode maps engine errors onto gRPC status codes.
func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, scatter.ErrBelowPairThreshold):
		return codes.InvalidArgument
	case errors.Is(err, collision.ErrNoChannel),
		errors.Is(err, scatter.ErrStringProcessUnset),
		errors.Is(err, scatter.ErrHardGeneratorUnset):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, scatter.ErrTooManyTries),
		errors.Is(err, scatter.ErrInvalidProcess),
		errors.Is(err, scatter.ErrInvalidResonanceFormation),
		errors.Is(err, xsection.ErrPartitionMismatch):
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// toStatus wraps err as a gRPC status error.
func toStatus(err error) error {
	return status.Error(grpcCode(err), err.Error())
}

// httpStatus maps engine errors onto HTTP status codes.
func httpStatus(err error) int {
	switch grpcCode(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.Canceled:
		return 499
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
