package rpcclient

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storegate/internal/apperr"
)

// kindForCode is the single mapping from remote status codes into the
// gateway's error taxonomy. Callers above the RPC clients never see raw
// transport errors.
var kindForCode = map[codes.Code]apperr.Kind{
	codes.InvalidArgument:    apperr.InvalidArgument,
	codes.FailedPrecondition: apperr.InvalidArgument,
	codes.AlreadyExists:      apperr.AlreadyExists,
	codes.NotFound:           apperr.NotFound,
	codes.Unauthenticated:    apperr.Unauthenticated,
	codes.PermissionDenied:   apperr.PermissionDenied,
	codes.ResourceExhausted:  apperr.ResourceExhausted,
	codes.Unavailable:        apperr.Unavailable,
	codes.DeadlineExceeded:   apperr.DeadlineExceeded,
}

// translate wraps a failed RPC into the gateway taxonomy. Non-status errors
// mean the transport itself broke, which reads as the service being
// unavailable.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return apperr.Wrap(apperr.Unavailable, op+" unavailable", err)
	}

	kind, found := kindForCode[st.Code()]
	if !found {
		kind = apperr.Internal
	}
	return apperr.Wrap(kind, op+" failed", err)
}
