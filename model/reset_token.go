// file: model/reset_token.go

package model

import "time"

// ResetToken is an outstanding password reset attempt. Token is the signed
// reset credential and doubles as the primary key.
type ResetToken struct {
	Token          string    `json:"-"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Used           bool      `json:"used"`
	AttemptCount   int       `json:"attempt_count"`
	FailedAttempts int       `json:"failed_attempts"`
}

// ExpiredAt reports whether the token is past its expiry at t.
// A token is still valid at exactly ExpiresAt.
func (t *ResetToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Locked reports whether the token has used up its failed attempts.
func (t *ResetToken) Locked(maxAttempts int) bool {
	return t.FailedAttempts >= maxAttempts
}
