package shortener

import "errors"

// Error kinds. Every error returned by the core unwraps to one of these.
var (
	ErrNotFound         = errors.New("not found")
	ErrExpired          = errors.New("expired")
	ErrForbidden        = errors.New("forbidden")
	ErrPasswordRequired = errors.New("password required")
	ErrRateLimited      = errors.New("rate limited")
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrInternal         = errors.New("internal error")
)

// Error is a specific failure reason that belongs to a kind.
type Error struct {
	kind error
	msg  string
}

// NewError returns an error with a user-facing message that matches kind under errors.Is.
func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Redemption and issuance failures.
var (
	ErrLinkNotFound     = NewError(ErrNotFound, "Link not found.")
	ErrLinkExpired      = NewError(ErrExpired, "This link has expired.")
	ErrLinkDisabled     = NewError(ErrForbidden, "This link has been disabled.")
	ErrPasswordMissing  = NewError(ErrPasswordRequired, "This link is password protected.")
	ErrWrongPassword    = NewError(ErrForbidden, "Incorrect password.")
	ErrInvalidToken     = NewError(ErrForbidden, "Invalid or missing token.")
	ErrTokenMismatch    = NewError(ErrForbidden, "Token mismatch with client.")
	ErrTokenExpired     = NewError(ErrForbidden, "Token expired. Please reload the page.")
	ErrTooEarly         = NewError(ErrForbidden, "Please wait before continuing.")
	ErrTooManyRequests  = NewError(ErrRateLimited, "Too many requests. Please slow down.")
	ErrNotOwner         = NewError(ErrForbidden, "You do not own this link.")
	ErrAliasTaken       = NewError(ErrValidation, "Alias is already taken.")
	ErrInvalidURL       = NewError(ErrValidation, "The original url must be a valid http or https URL.")
	ErrInvalidAlias     = NewError(ErrValidation, "Alias may only contain letters, digits, '-' and '_' (3-32 characters).")
	ErrInvalidStatus    = NewError(ErrValidation, "Status must be active or disabled.")
	ErrCodesExhausted   = NewError(ErrInternal, "Failed to create short link after several attempts.")
	ErrInvalidAmount    = NewError(ErrValidation, "Attributed amount must be positive.")
	ErrCodeCollision    = NewError(ErrConflict, "Short code already exists.")
	ErrInvalidExpiresAt = NewError(ErrValidation, "Expiry must be in the future.")
	ErrGuestEarnings    = NewError(ErrValidation, "Guest links cannot earn per click.")
	ErrExpiryConflict   = NewError(ErrValidation, "Set an expiry or clear it, not both.")
)
