package usecase

import (
	"context"
	"errors"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
	activationService "github.com/allisson/activation/internal/activation/service"
	"github.com/allisson/activation/internal/database"
	apperrors "github.com/allisson/activation/internal/errors"
	appValidation "github.com/allisson/activation/internal/validation"
)

// activationUseCase implements UseCase.
type activationUseCase struct {
	txManager      database.TxManager
	invitationRepo InvitationRepository
	userRepo       UserRepository
	secretService  activationService.SecretService
	passwordHasher *pwdhash.PasswordHasher
}

// NewActivationUseCase creates a new activation UseCase.
func NewActivationUseCase(
	txManager database.TxManager,
	invitationRepo InvitationRepository,
	userRepo UserRepository,
	secretService activationService.SecretService,
) (UseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &activationUseCase{
		txManager:      txManager,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		secretService:  secretService,
		passwordHasher: hasher,
	}, nil
}

// ValidateToken checks the (account, secret) pair against the stored invitation.
//
// All failure modes (unknown account, wrong secret, expired or consumed
// invitation) collapse into ErrInvitationInvalid so callers cannot probe which
// case they hit.
func (a *activationUseCase) ValidateToken(
	ctx context.Context,
	input *activationDomain.ValidateTokenInput,
) (*activationDomain.User, error) {
	invitation, err := a.invitationRepo.GetByAccountID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, activationDomain.ErrInvitationNotFound) {
			return nil, activationDomain.ErrInvitationInvalid
		}
		return nil, err
	}

	if !a.secretService.CompareSecret(input.Secret, invitation.SecretHash) {
		return nil, activationDomain.ErrInvitationInvalid
	}

	if !invitation.Usable(time.Now().UTC()) {
		return nil, activationDomain.ErrInvitationInvalid
	}

	user, err := a.userRepo.GetByID(ctx, invitation.AccountID)
	if err != nil {
		if errors.Is(err, activationDomain.ErrUserNotFound) {
			return nil, activationDomain.ErrInvitationInvalid
		}
		return nil, err
	}

	return user, nil
}

// validatePassword re-checks the full password policy server-side. The page
// enforces the same rules live, but the server never trusts the client.
func (a *activationUseCase) validatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		appValidation.PasswordStrength{
			MinLength:     8,
			RequireUpper:  true,
			RequireLower:  true,
			RequireNumber: true,
		},
	)
	return appValidation.WrapValidationError(err)
}

// CreatePassword verifies the invitation, hashes the password, and consumes
// the invitation while storing the hash in one transaction.
//
// An already consumed invitation returns ErrInvitationConsumed (a distinct,
// user-visible conflict); every other unusable state returns
// ErrInvitationInvalid.
func (a *activationUseCase) CreatePassword(
	ctx context.Context,
	input *activationDomain.CreatePasswordInput,
) error {
	if err := a.validatePassword(input.Password); err != nil {
		return err
	}

	invitation, err := a.invitationRepo.GetByAccountID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, activationDomain.ErrInvitationNotFound) {
			return activationDomain.ErrInvitationInvalid
		}
		return err
	}

	if !a.secretService.CompareSecret(input.Secret, invitation.SecretHash) {
		return activationDomain.ErrInvitationInvalid
	}

	if invitation.Consumed() {
		return activationDomain.ErrInvitationConsumed
	}

	if !invitation.Usable(time.Now().UTC()) {
		return activationDomain.ErrInvitationInvalid
	}

	passwordHash, err := a.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	now := time.Now().UTC()
	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		// MarkConsumed guards against a concurrent submit: the second caller
		// sees zero rows updated and the transaction rolls back.
		if err := a.invitationRepo.MarkConsumed(ctx, invitation.ID, now); err != nil {
			return err
		}
		return a.userRepo.SetPassword(ctx, invitation.AccountID, passwordHash, now)
	})
}

// Login authenticates a user by username and password.
//
// Unknown usernames, inactive accounts and wrong passwords all return
// ErrInvalidCredentials to prevent account enumeration.
func (a *activationUseCase) Login(
	ctx context.Context,
	input *activationDomain.LoginInput,
) (*activationDomain.User, error) {
	user, err := a.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, activationDomain.ErrUserNotFound) {
			return nil, activationDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Activated() {
		return nil, activationDomain.ErrInvalidCredentials
	}

	ok, err := a.passwordHasher.Verify([]byte(input.Password), user.PasswordHash)
	if err != nil || !ok {
		return nil, activationDomain.ErrInvalidCredentials
	}

	return user, nil
}

// CreateInvitation issues a new invitation for an existing account and returns
// the plain secret for the activation link. The secret is not stored.
func (a *activationUseCase) CreateInvitation(
	ctx context.Context,
	accountID uuid.UUID,
	ttl time.Duration,
) (*activationDomain.CreateInvitationOutput, error) {
	// The account must exist before an invitation can point at it.
	if _, err := a.userRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	plainSecret, secretHash, err := a.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invitation := &activationDomain.Invitation{
		ID:         uuid.Must(uuid.NewV7()),
		AccountID:  accountID,
		SecretHash: secretHash,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}

	if err := a.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	return &activationDomain.CreateInvitationOutput{
		Invitation:  invitation,
		PlainSecret: plainSecret,
	}, nil
}
