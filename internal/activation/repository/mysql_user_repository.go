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

// MySQLUserRepository implements User persistence for MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// GetByID retrieves a User by ID. Returns ErrUserNotFound if the user doesn't exist.
func (m *MySQLUserRepository) GetByID(
	ctx context.Context,
	userID uuid.UUID,
) (*activationDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, username, first_name, last_name, email, password_hash, created_at, updated_at
			  FROM users WHERE id = ?`

	return m.scanUser(querier.QueryRowContext(ctx, query, userID.String()))
}

// GetByUsername retrieves a User by username. Returns ErrUserNotFound if the
// user doesn't exist.
func (m *MySQLUserRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*activationDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, username, first_name, last_name, email, password_hash, created_at, updated_at
			  FROM users WHERE username = ?`

	return m.scanUser(querier.QueryRowContext(ctx, query, username))
}

// SetPassword stores the password hash for a user.
func (m *MySQLUserRepository) SetPassword(
	ctx context.Context,
	userID uuid.UUID,
	passwordHash string,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, passwordHash, updatedAt, userID.String())
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
func (m *MySQLUserRepository) scanUser(row *sql.Row) (*activationDomain.User, error) {
	var user activationDomain.User
	var id string
	var passwordHash sql.NullString

	err := row.Scan(
		&id,
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

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse user id")
	}

	user.PasswordHash = passwordHash.String
	return &user, nil
}
