package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
	"github.com/allisson/activation/internal/metrics"
)

// useCaseWithMetrics decorates UseCase with metrics instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &useCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record reports one operation outcome with its duration.
func (u *useCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "activation", operation, status)
	u.metrics.RecordDuration(ctx, "activation", operation, time.Since(start), status)
}

// ValidateToken records metrics for token validation operations.
func (u *useCaseWithMetrics) ValidateToken(
	ctx context.Context,
	input *activationDomain.ValidateTokenInput,
) (*activationDomain.User, error) {
	start := time.Now()
	user, err := u.next.ValidateToken(ctx, input)
	u.record(ctx, "validate_token", start, err)
	return user, err
}

// CreatePassword records metrics for password creation operations.
func (u *useCaseWithMetrics) CreatePassword(
	ctx context.Context,
	input *activationDomain.CreatePasswordInput,
) error {
	start := time.Now()
	err := u.next.CreatePassword(ctx, input)
	u.record(ctx, "create_password", start, err)
	return err
}

// Login records metrics for login operations.
func (u *useCaseWithMetrics) Login(
	ctx context.Context,
	input *activationDomain.LoginInput,
) (*activationDomain.User, error) {
	start := time.Now()
	user, err := u.next.Login(ctx, input)
	u.record(ctx, "login", start, err)
	return user, err
}

// CreateInvitation records metrics for invitation issuance operations.
func (u *useCaseWithMetrics) CreateInvitation(
	ctx context.Context,
	accountID uuid.UUID,
	ttl time.Duration,
) (*activationDomain.CreateInvitationOutput, error) {
	start := time.Now()
	output, err := u.next.CreateInvitation(ctx, accountID, ttl)
	u.record(ctx, "create_invitation", start, err)
	return output, err
}
