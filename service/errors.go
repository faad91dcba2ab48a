package service

import (
	"errors"
	"fmt"
)

// Password reset outcomes. The handler maps each one to a status code.
var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrResetTokenExpired      = errors.New("reset token has expired")
	ErrResetAttemptsExhausted = errors.New("too many failed attempts, request a new reset link")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidUserID          = errors.New("invalid user id in token")
	ErrEmailNotFound          = errors.New("email not found")
	ErrTooManyResetRequests   = errors.New("too many password reset requests, try again later")
	ErrNotificationFailed     = errors.New("could not send password reset email")
)

// Registration and login outcomes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
)

// PasswordFormatError rejects a new password that fails the complexity
// policy. Remaining is the number of submissions the token still allows.
type PasswordFormatError struct {
	Err       error
	Remaining int
}

func (e *PasswordFormatError) Error() string {
	return fmt.Sprintf("%s (%d attempts remaining)", e.Err, e.Remaining)
}

func (e *PasswordFormatError) Unwrap() error {
	return e.Err
}
