// Package domain defines the core account activation entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invitation represents a pending account-activation request. The link emailed
// to the user carries the account ID and a plain secret; only the SHA-256 hash
// of the secret is stored. An invitation is consumed exactly once, by the
// create-password call that sets the account's first password.
type Invitation struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	SecretHash string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the invitation can still gate a password creation:
// it has not been consumed and has not expired.
func (i *Invitation) Usable(now time.Time) bool {
	if i.ConsumedAt != nil {
		return false
	}
	return now.Before(i.ExpiresAt)
}

// Consumed reports whether the invitation has already been used.
func (i *Invitation) Consumed() bool {
	return i.ConsumedAt != nil
}

// ValidateTokenInput carries the (account, secret) pair taken from an
// activation link. Both values are opaque to the caller; validity is decided
// exclusively by looking the invitation up.
type ValidateTokenInput struct {
	AccountID uuid.UUID
	Secret    string
}

// CreatePasswordInput carries the activation link pair plus the chosen password.
type CreatePasswordInput struct {
	AccountID uuid.UUID
	Secret    string
	Password  string
}

// LoginInput carries credentials for the session login endpoint.
type LoginInput struct {
	Username string
	Password string
}

// CreateInvitationOutput is returned when an invitation is issued. PlainSecret
// is shown exactly once; it is never stored.
type CreateInvitationOutput struct {
	Invitation  *Invitation
	PlainSecret string
}
