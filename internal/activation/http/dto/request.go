// Package dto provides data transfer objects for the activation HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	activationDomain "github.com/allisson/activation/internal/activation/domain"
	customValidation "github.com/allisson/activation/internal/validation"
)

// CreatePasswordRequest contains the password chosen on the set-password page.
type CreatePasswordRequest struct {
	Password string `json:"password"`
}

// Validate checks the request shape. The full password policy is enforced by
// the use case; this only rejects obviously malformed requests early.
func (r *CreatePasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(1, 128).Error("password must be at most 128 characters"),
		),
	)
}

// LoginRequest contains the credentials for the session login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			customValidation.NotBlank,
			customValidation.Username,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(1, 128),
		),
	)
}

// ToLoginInput converts the request to a use case input.
func (r *LoginRequest) ToLoginInput() *activationDomain.LoginInput {
	return &activationDomain.LoginInput{
		Username: r.Username,
		Password: r.Password,
	}
}
