package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system. PasswordHash is empty until the
// account has been activated through the set-password flow.
type User struct {
	ID           uuid.UUID
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Activated reports whether the user has completed the set-password flow.
func (u *User) Activated() bool {
	return u.PasswordHash != ""
}
