package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
)

func newMySQLMockDB(t *testing.T) (*MySQLInvitationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	repo := NewMySQLInvitationRepository(db)
	return repo, mock, func() { _ = db.Close() }
}

func TestMySQLInvitationRepository_Create(t *testing.T) {
	repo, mock, cleanup := newMySQLMockDB(t)
	defer cleanup()

	invitation := &activationDomain.Invitation{
		ID:         uuid.Must(uuid.NewV7()),
		AccountID:  uuid.Must(uuid.NewV7()),
		SecretHash: "secret-hash",
		ExpiresAt:  time.Now().UTC().Add(72 * time.Hour),
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invitations")).
		WithArgs(
			invitation.ID.String(),
			invitation.AccountID.String(),
			invitation.SecretHash,
			invitation.ExpiresAt,
			invitation.ConsumedAt,
			invitation.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), invitation)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInvitationRepository_GetByAccountID(t *testing.T) {
	t.Run("FoundParsesStringUUIDs", func(t *testing.T) {
		repo, mock, cleanup := newMySQLMockDB(t)
		defer cleanup()

		invitationID := uuid.Must(uuid.NewV7())
		accountID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		rows := sqlmock.NewRows([]string{
			"id", "account_id", "secret_hash", "expires_at", "consumed_at", "created_at",
		}).AddRow(invitationID.String(), accountID.String(), "secret-hash", now.Add(time.Hour), nil, now)

		mock.ExpectQuery("SELECT (.+) FROM invitations WHERE account_id").
			WithArgs(accountID.String()).
			WillReturnRows(rows)

		invitation, err := repo.GetByAccountID(context.Background(), accountID)
		require.NoError(t, err)
		assert.Equal(t, invitationID, invitation.ID)
		assert.Equal(t, accountID, invitation.AccountID)
		assert.False(t, invitation.Consumed())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock, cleanup := newMySQLMockDB(t)
		defer cleanup()

		accountID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT (.+) FROM invitations WHERE account_id").
			WithArgs(accountID.String()).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "account_id", "secret_hash", "expires_at", "consumed_at", "created_at",
			}))

		_, err := repo.GetByAccountID(context.Background(), accountID)
		assert.ErrorIs(t, err, activationDomain.ErrInvitationNotFound)
	})
}

func TestMySQLInvitationRepository_MarkConsumed(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock, cleanup := newMySQLMockDB(t)
		defer cleanup()

		invitationID := uuid.Must(uuid.NewV7())
		consumedAt := time.Now().UTC()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE invitations SET consumed_at")).
			WithArgs(consumedAt, invitationID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkConsumed(context.Background(), invitationID, consumedAt)
		assert.NoError(t, err)
	})

	t.Run("AlreadyConsumed", func(t *testing.T) {
		repo, mock, cleanup := newMySQLMockDB(t)
		defer cleanup()

		invitationID := uuid.Must(uuid.NewV7())
		consumedAt := time.Now().UTC()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE invitations SET consumed_at")).
			WithArgs(consumedAt, invitationID.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkConsumed(context.Background(), invitationID, consumedAt)
		assert.ErrorIs(t, err, activationDomain.ErrInvitationConsumed)
	})
}
