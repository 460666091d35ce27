package dto

import (
	activationDomain "github.com/allisson/activation/internal/activation/domain"
)

// UserResponse is the user representation returned by the activation API.
// Field names follow the wire contract consumed by the set-password page.
type UserResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ValidateTokenResponse is the tri-state gate answer. A well-formed response
// with Valid=false is a normal outcome, not an error: the page renders Message
// and never shows the form.
type ValidateTokenResponse struct {
	Valid   bool          `json:"valid"`
	User    *UserResponse `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
}

// LoginResponse carries the authenticated user profile.
type LoginResponse struct {
	User UserResponse `json:"user"`
}

// ToUserResponse converts a domain user to its API representation.
func ToUserResponse(user *activationDomain.User) *UserResponse {
	return &UserResponse{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}
