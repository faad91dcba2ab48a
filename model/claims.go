package model

import "github.com/golang-jwt/jwt/v5"

const (
	PurposeReset     = "reset"
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ResetClaims binds a reset token to a user (Subject) and an expiry.
type ResetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AppClaims are carried by login access and refresh tokens.
type AppClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}
