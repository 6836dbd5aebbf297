package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/bistro/internal/auth"
	"github.com/mmynk/bistro/internal/models"
)

var errInternal = errors.New("internal error")

// codeFor maps a domain error to its Connect code.
func codeFor(err error) connect.Code {
	switch {
	case errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.CodeUnauthenticated
	case errors.Is(err, models.ErrForbidden):
		return connect.CodePermissionDenied
	case errors.Is(err, models.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, models.ErrItemUnavailable),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrTerminalState),
		errors.Is(err, models.ErrInvalidTransition):
		return connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrInvalidArgument),
		errors.Is(err, auth.ErrWeakPassword):
		return connect.CodeInvalidArgument
	case errors.Is(err, auth.ErrEmailExists):
		return connect.CodeAlreadyExists
	case errors.Is(err, models.ErrStorageUnavailable):
		return connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	}
	return connect.CodeInternal
}

// toConnectError translates a domain error for the wire. Internal and
// storage failures are reported without their cause.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	switch code := codeFor(err); code {
	case connect.CodeInternal:
		return connect.NewError(code, errInternal)
	case connect.CodeUnavailable:
		return connect.NewError(code, models.ErrStorageUnavailable)
	default:
		return connect.NewError(code, err)
	}
}
