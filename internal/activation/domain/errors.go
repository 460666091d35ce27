package domain

import (
	"github.com/allisson/activation/internal/errors"
)

// Account activation errors.
var (
	// ErrInvitationNotFound indicates no invitation exists for the account.
	ErrInvitationNotFound = errors.Wrap(errors.ErrNotFound, "invitation not found")

	// ErrUserNotFound indicates the account record does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrInvitationInvalid indicates the (account, secret) pair does not match a
	// usable invitation. Covers unknown, expired and mismatched secrets with one
	// error to avoid telling callers which case they hit.
	ErrInvitationInvalid = errors.Wrap(errors.ErrUnauthorized, "invitation is invalid or has expired")

	// ErrInvitationConsumed indicates the invitation was already used to set a password.
	ErrInvitationConsumed = errors.Wrap(errors.ErrConflict, "invitation already used")

	// ErrInvalidCredentials indicates a failed login. Covers both unknown
	// usernames and wrong passwords to prevent account enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")
)
