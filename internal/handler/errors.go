package handler

import (
	"context"
	"errors"

	"anonchat/internal/app/feed"
	"anonchat/internal/app/payment"
	"anonchat/internal/app/session"
	"anonchat/internal/app/storage"
	"anonchat/internal/pkg/errs"
)

// toCustomError maps a domain error to its API error.
func toCustomError(err error) *errs.CustomError {
	var failure *payment.FailureError

	switch {
	case errors.Is(err, feed.ErrEmptyMessage):
		return errs.NewError(errs.ErrMessageEmpty)
	case errors.Is(err, feed.ErrMessageTooLong):
		return errs.NewError(errs.ErrMessageContentTooLong, feed.MaxContentBytes)
	case errors.Is(err, feed.ErrInvalidText):
		return errs.NewError(errs.ErrInvalidParams)
	case errors.Is(err, feed.ErrNoAccess):
		return errs.NewError(errs.ErrAccessExpired)
	case errors.Is(err, payment.ErrInvalidTransition):
		return errs.NewError(errs.ErrPaymentInvalidState)
	case errors.Is(err, payment.ErrUnavailable):
		return errs.NewError(errs.ErrPaymentUnavailable)
	case errors.As(err, &failure):
		return errs.NewError(errs.ErrPaymentFailed, failure.Reason)
	case errors.Is(err, storage.ErrRead):
		return errs.NewError(errs.ErrStorageRead)
	case errors.Is(err, storage.ErrWrite):
		return errs.NewError(errs.ErrStorageWrite)
	case errors.Is(err, session.ErrStopped), errors.Is(err, context.Canceled):
		return errs.NewError(errs.ErrSessionStopped)
	default:
		return errs.NewError(errs.ErrUnknown, err)
	}
}
