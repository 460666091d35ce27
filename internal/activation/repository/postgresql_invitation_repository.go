// Package repository provides SQL persistence for the activation domain.
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

// PostgreSQLInvitationRepository implements Invitation persistence for PostgreSQL.
// Joins an in-flight transaction via database.GetTx().
type PostgreSQLInvitationRepository struct {
	db *sql.DB
}

// NewPostgreSQLInvitationRepository creates a new PostgreSQLInvitationRepository.
func NewPostgreSQLInvitationRepository(db *sql.DB) *PostgreSQLInvitationRepository {
	return &PostgreSQLInvitationRepository{db: db}
}

// Create inserts a new Invitation.
func (p *PostgreSQLInvitationRepository) Create(
	ctx context.Context,
	invitation *activationDomain.Invitation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO invitations (id, account_id, secret_hash, expires_at, consumed_at, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		invitation.ID,
		invitation.AccountID,
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
func (p *PostgreSQLInvitationRepository) GetByAccountID(
	ctx context.Context,
	accountID uuid.UUID,
) (*activationDomain.Invitation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, account_id, secret_hash, expires_at, consumed_at, created_at
			  FROM invitations WHERE account_id = $1
			  ORDER BY created_at DESC LIMIT 1`

	var invitation activationDomain.Invitation

	err := querier.QueryRowContext(ctx, query, accountID).Scan(
		&invitation.ID,
		&invitation.AccountID,
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

	return &invitation, nil
}

// MarkConsumed records the consumption time of an invitation. Returns
// ErrInvitationConsumed if the invitation was already consumed, so a racing
// duplicate submit loses at the database instead of double-consuming.
func (p *PostgreSQLInvitationRepository) MarkConsumed(
	ctx context.Context,
	invitationID uuid.UUID,
	consumedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE invitations SET consumed_at = $1
			  WHERE id = $2 AND consumed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, consumedAt, invitationID)
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
