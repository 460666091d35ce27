package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
	"github.com/allisson/activation/internal/database"
	apperrors "github.com/allisson/activation/internal/errors"
)

// MySQLInvitationRepository implements Invitation persistence for MySQL.
// UUIDs are stored as CHAR(36) strings.
type MySQLInvitationRepository struct {
	db *sql.DB
}

// NewMySQLInvitationRepository creates a new MySQLInvitationRepository.
func NewMySQLInvitationRepository(db *sql.DB) *MySQLInvitationRepository {
	return &MySQLInvitationRepository{db: db}
}

// Create inserts a new Invitation.
func (m *MySQLInvitationRepository) Create(
	ctx context.Context,
	invitation *activationDomain.Invitation,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO invitations (id, account_id, secret_hash, expires_at, consumed_at, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		invitation.ID.String(),
		invitation.AccountID.String(),
		invitation.SecretHash,
		invitation.ExpiresAt,
		invitation.ConsumedAt,
		invitation.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create invitation")
	}
	return nil
}

// GetByAccountID retrieves the most recent Invitation for an account. Returns
// ErrInvitationNotFound if the account has no invitation.
func (m *MySQLInvitationRepository) GetByAccountID(
	ctx context.Context,
	accountID uuid.UUID,
) (*activationDomain.Invitation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, account_id, secret_hash, expires_at, consumed_at, created_at
			  FROM invitations WHERE account_id = ?
			  ORDER BY created_at DESC LIMIT 1`

	var invitation activationDomain.Invitation
	var id, account string

	err := querier.QueryRowContext(ctx, query, accountID.String()).Scan(
		&id,
		&account,
		&invitation.SecretHash,
		&invitation.ExpiresAt,
		&invitation.ConsumedAt,
		&invitation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, activationDomain.ErrInvitationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get invitation")
	}

	invitation.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse invitation id")
	}
	invitation.AccountID, err = uuid.Parse(account)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse account id")
	}

	return &invitation, nil
}

// MarkConsumed records the consumption time of an invitation. Returns
// ErrInvitationConsumed if the invitation was already consumed.
func (m *MySQLInvitationRepository) MarkConsumed(
	ctx context.Context,
	invitationID uuid.UUID,
	consumedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE invitations SET consumed_at = ?
			  WHERE id = ? AND consumed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, consumedAt, invitationID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to mark invitation consumed")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check invitation update")
	}
	if rows == 0 {
		return activationDomain.ErrInvitationConsumed
	}

	return nil
}
