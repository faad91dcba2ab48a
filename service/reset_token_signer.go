package service

import (
	"errors"
	"fmt"
	"fruit-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrWrongTokenPurpose = errors.New("token purpose is not reset")
	ErrMissingSubject    = errors.New("token has no subject")
)

// ResetTokenSigner issues and verifies the signed half of a reset token.
// It does not know about the persisted record; expiry is enforced by the
// record's expires_at, not by the exp claim.
type ResetTokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokenSigner(secret string, ttl time.Duration) *ResetTokenSigner {
	return &ResetTokenSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign returns a token for userID and the instant it expires.
func (s *ResetTokenSigner) Sign(userID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &model.ResetClaims{
		Purpose: model.PurposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature and the reset purpose of tokenString.
// A token whose exp claim has passed is still returned.
func (s *ResetTokenSigner) Parse(tokenString string) (*model.ResetClaims, error) {
	claims := &model.ResetClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil && !onlyExpired(err) {
		return nil, err
	}

	if claims.Purpose != model.PurposeReset {
		return nil, ErrWrongTokenPurpose
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// onlyExpired reports whether err is a claims failure caused by exp alone.
// jwt/v5 validates claims only after the signature has been verified.
func onlyExpired(err error) bool {
	if !errors.Is(err, jwt.ErrTokenExpired) {
		return false
	}
	for _, other := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenRequiredClaimMissing,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenUsedBeforeIssued,
	} {
		if errors.Is(err, other) {
			return false
		}
	}
	return true
}
