package errs

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// storageCodes are backend application codes that indicate a storage-layer
// failure even when the carrying response has a generic 4xx status.
var storageCodes = map[string]bool{
	"PGRST116": true, // row not found
	"42501":    true, // insufficient privilege
	"23505":    true, // unique violation
	"23503":    true, // foreign key violation
	"42P01":    true, // undefined table
}

// Classify maps a raw failure to exactly one Kind. It is deterministic,
// total and side-effect free: any input, including nil, yields a Kind.
//
// Specific signals win over generic ones: a backend response can carry both
// a 4xx status and an application code, so validation and storage codes are
// checked before HTTP status markers.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	// 1. Structured validation errors.
	var fieldErrs *FieldErrors
	if errors.As(err, &fieldErrs) {
		return KindValidation
	}

	// 2. Storage driver and backend storage codes.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return KindStorage
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return KindStorage
	}

	var apiErr *APIStatusError
	hasStatus := errors.As(err, &apiErr)
	if hasStatus && storageCodes[apiErr.Code] {
		return KindStorage
	}

	st, isGRPC := grpcStatus(err)
	if isGRPC {
		switch st.Code() {
		case codes.NotFound, codes.AlreadyExists, codes.FailedPrecondition:
			return KindStorage
		case codes.InvalidArgument:
			return KindValidation
		}
	}

	// 3. Authentication markers.
	if hasStatus && apiErr.StatusCode == 401 {
		return KindAuth
	}
	if isGRPC && st.Code() == codes.Unauthenticated {
		return KindAuth
	}

	// 4. Authorization markers.
	if hasStatus && apiErr.StatusCode == 403 {
		return KindPermission
	}
	if isGRPC && st.Code() == codes.PermissionDenied {
		return KindPermission
	}

	// 5. Server-side failures.
	if hasStatus && apiErr.StatusCode >= 500 {
		return KindServer
	}
	if isGRPC {
		switch st.Code() {
		case codes.Internal, codes.DataLoss, codes.Unimplemented:
			return KindServer
		}
	}

	// 6. Network failures.
	if isNetworkError(err) {
		return KindNetwork
	}
	if isGRPC {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded:
			return KindNetwork
		}
	}

	return KindUnknown
}

// grpcStatus extracts a gRPC status without treating arbitrary errors as
// gRPC: status.FromError fabricates codes.Unknown for non-status errors.
func grpcStatus(err error) (*status.Status, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return nil, false
	}
	return st, true
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
