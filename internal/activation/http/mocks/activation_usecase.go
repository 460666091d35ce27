// Package mocks provides hand-written mocks for activation handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

func (m *MockUseCase) ValidateToken(
	ctx context.Context,
	input *activationDomain.ValidateTokenInput,
) (*activationDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activationDomain.User), args.Error(1)
}

func (m *MockUseCase) CreatePassword(
	ctx context.Context,
	input *activationDomain.CreatePasswordInput,
) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockUseCase) Login(
	ctx context.Context,
	input *activationDomain.LoginInput,
) (*activationDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activationDomain.User), args.Error(1)
}

func (m *MockUseCase) CreateInvitation(
	ctx context.Context,
	accountID uuid.UUID,
	ttl time.Duration,
) (*activationDomain.CreateInvitationOutput, error) {
	args := m.Called(ctx, accountID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activationDomain.CreateInvitationOutput), args.Error(1)
}
