// file: model/request.go

package model

import "strings"

// RegisterRequest defines the payload for creating a new user.
// The password must satisfy the same complexity policy as a reset.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password_policy"`
}

func (r *RegisterRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// ForgotPasswordRequest starts the reset workflow for an email address.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

// ResetPasswordRequest consumes a reset token. NewPassword carries no tag:
// the reset service checks it, and every violation, an empty password
// included, counts against the token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password"`
}

// ForgotPasswordResponse is returned by the forgot-password endpoint.
type ForgotPasswordResponse struct {
	Msg       string `json:"msg"`
	TestToken string `json:"test_token,omitempty"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// TokenPair is returned by login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
