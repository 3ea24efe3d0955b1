package domain

import "errors"

// Expected outcomes are sentinel errors; the HTTP layer maps each to a status
// code in one place. Anything else bubbling out of a service is treated as an
// internal error and never shown to the caller.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many login attempts, try again later")
	ErrMissingFields      = errors.New("all fields are required")
	ErrPasswordMismatch   = errors.New("password and confirm password do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrSamePassword       = errors.New("new password cannot be the same as the current password")
	ErrCurrentPassword    = errors.New("current password is incorrect")
	ErrNothingToUpdate    = errors.New("at least one of name or email is required")
)

// IsValidation reports whether err is one of the request-shaped rejections
// that render as 400.
func IsValidation(err error) bool {
	for _, e := range []error{
		ErrMissingFields,
		ErrPasswordMismatch,
		ErrPasswordTooShort,
		ErrSamePassword,
		ErrCurrentPassword,
		ErrNothingToUpdate,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
