package service

import (
	"errors"
	"fmt"
	"fruit-api/config"
	"fruit-api/logger"
	"fruit-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService hashes credentials and issues login tokens.
type AuthService struct {
	jwt        config.JWTConfig
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(jwtCfg config.JWTConfig, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{jwt: jwtCfg, bcryptCost: bcryptCost, now: time.Now}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateTokenPair issues an access and a refresh token for email.
func (s *AuthService) GenerateTokenPair(email string) (*model.TokenPair, error) {
	access, err := s.sign(email, model.TokenTypeAccess, s.jwt.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(email, model.TokenTypeRefresh, s.jwt.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *AuthService) sign(email, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &model.AppClaims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.SecretKey))
	if err != nil {
		logger.Log.WithError(err).WithField("email", logger.MaskEmail(email)).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}

// ParseAccessToken validates an access token and returns its claims.
// Refresh and reset tokens are rejected.
func (s *AuthService) ParseAccessToken(tokenString string) (*model.AppClaims, error) {
	claims := &model.AppClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return []byte(s.jwt.SecretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Type != model.TokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}
