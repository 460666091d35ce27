// Package usecase implements the account activation business logic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
)

// UseCase defines the account activation operations: the three calls backing
// the set-password page plus invitation issuance for the CLI.
type UseCase interface {
	// ValidateToken checks an (account, secret) pair against the stored
	// invitation and returns the associated user when the pair is usable.
	ValidateToken(ctx context.Context, input *activationDomain.ValidateTokenInput) (*activationDomain.User, error)

	// CreatePassword sets the account's first password and consumes the
	// invitation in the same transaction.
	CreatePassword(ctx context.Context, input *activationDomain.CreatePasswordInput) error

	// Login authenticates with username and password.
	Login(ctx context.Context, input *activationDomain.LoginInput) (*activationDomain.User, error)

	// CreateInvitation issues a new invitation for an existing account.
	CreateInvitation(ctx context.Context, accountID uuid.UUID, ttl time.Duration) (*activationDomain.CreateInvitationOutput, error)
}

// InvitationRepository defines invitation persistence operations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *activationDomain.Invitation) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*activationDomain.Invitation, error)
	MarkConsumed(ctx context.Context, invitationID uuid.UUID, consumedAt time.Time) error
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*activationDomain.User, error)
	GetByUsername(ctx context.Context, username string) (*activationDomain.User, error)
	SetPassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
}
