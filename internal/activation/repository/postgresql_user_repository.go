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

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

// GetByID retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (p *PostgreSQLUserRepository) GetByID(
	ctx context.Context,
	userID uuid.UUID,
) (*activationDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, username, first_name, last_name, email, password_hash, created_at, updated_at
			  FROM users WHERE id = $1`

	return p.scanUser(querier.QueryRowContext(ctx, query, userID))
}

// GetByUsername retrieves a User by username. Returns ErrUserNotFound if the
// user doesn't exist.
func (p *PostgreSQLUserRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*activationDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, username, first_name, last_name, email, password_hash, created_at, updated_at
			  FROM users WHERE username = $1`

	return p.scanUser(querier.QueryRowContext(ctx, query, username))
}

// SetPassword stores the password hash for a user.
func (p *PostgreSQLUserRepository) SetPassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, passwordHash, updatedAt, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set password")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check password update")
	}
	if rows == 0 {
		return activationDomain.ErrUserNotFound
	}

	return nil
}

// scanUser scans a single user row, mapping sql.ErrNoRows to ErrUserNotFound.
func (p *PostgreSQLUserRepository) scanUser(row *sql.Row) (*activationDomain.User, error) {
	var user activationDomain.User
	var passwordHash sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&passwordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, activationDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	user.PasswordHash = passwordHash.String
	return &user, nil
}
