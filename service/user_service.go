package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fruit-api/logger"
	"fruit-api/model"
	"fruit-api/repository"
	"strings"
)

// UserService handles registration, login and profile lookups.
type UserService struct {
	userRepo repository.IUserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.IUserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// Register stores a new user. The password policy is enforced by the request validator.
func (s *UserService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	hashed, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, HashedPassword: hashed}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login checks the credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	if !s.auth.CheckPasswordHash(req.Password, user.HashedPassword) {
		logger.Log.WithField("user_id", user.ID).Warn("Login with wrong password")
		return nil, ErrInvalidCredentials
	}

	return s.auth.GenerateTokenPair(user.Email)
}

// Profile returns the user identified by email.
func (s *UserService) Profile(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
