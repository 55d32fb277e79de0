package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/paylink/internal/shortener"
)

const internalMessage = "Something went wrong. Please try again."

var errUnauthenticated = huma.Error401Unauthorized("Authentication required.")

// toHTTPError maps an error kind to a huma status error. The message of a
// specific reason is passed through; anything else is reported generically.
func toHTTPError(err error) error {
	msg := internalMessage

	var reason *shortener.Error
	if errors.As(err, &reason) {
		msg = reason.Error()
	}

	switch {
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound(msg)
	case errors.Is(err, shortener.ErrExpired):
		return huma.Error410Gone(msg)
	case errors.Is(err, shortener.ErrPasswordRequired):
		return huma.Error401Unauthorized(msg)
	case errors.Is(err, shortener.ErrForbidden):
		return huma.Error403Forbidden(msg)
	case errors.Is(err, shortener.ErrRateLimited):
		return huma.Error429TooManyRequests(msg)
	case errors.Is(err, shortener.ErrValidation):
		return huma.Error422UnprocessableEntity(msg)
	case errors.Is(err, shortener.ErrConflict):
		return huma.Error409Conflict(msg)
	case errors.Is(err, shortener.ErrInternal):
		return huma.Error500InternalServerError(msg)
	default:
		return huma.Error500InternalServerError(internalMessage)
	}
}
