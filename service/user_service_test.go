// service/user_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"fruit-api/model"
	"fruit-api/repository"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	auth := NewAuthService(testJWTConfig, bcrypt.MinCost)
	ctx := context.Background()
	req := model.RegisterRequest{Email: " Alice@Example.com", Password: "abc12345!"}

	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "alice@example.com" && auth.CheckPasswordHash("abc12345!", u.HashedPassword)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = uuid.New()
		}).Return(nil).Once()

		userService := NewUserService(mockRepo, auth)
		user, err := userService.Register(ctx, req)

		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(&model.User{Email: "alice@example.com"}, nil).Once()

		userService := NewUserService(mockRepo, auth)
		_, err := userService.Register(ctx, req)

		assert.Equal(t, ErrEmailAlreadyRegistered, err)
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("email taken concurrently", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("CreateUser", ctx, mock.Anything).Return(repository.ErrDuplicateEmail).Once()

		userService := NewUserService(mockRepo, auth)
		_, err := userService.Register(ctx, req)

		assert.Equal(t, ErrEmailAlreadyRegistered, err)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		expectedError := errors.New("database error")
		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(nil, expectedError).Once()

		userService := NewUserService(mockRepo, auth)
		_, err := userService.Register(ctx, req)

		assert.ErrorIs(t, err, expectedError)
	})
}

func TestUserService_Login(t *testing.T) {
	auth := NewAuthService(testJWTConfig, bcrypt.MinCost)
	ctx := context.Background()
	hash, err := auth.HashPassword("abc12345!")
	assert.NoError(t, err)
	stored := &model.User{ID: uuid.New(), Email: "alice@example.com", HashedPassword: hash}

	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(stored, nil).Once()

		pair, err := NewUserService(mockRepo, auth).Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "abc12345!"})

		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", ctx, "alice@example.com").Return(stored, nil).Once()

		_, err := NewUserService(mockRepo, auth).Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "wrong"})

		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		mockRepo.On("GetUserByEmail", ctx, "bob@example.com").Return(nil, sql.ErrNoRows).Once()

		_, err := NewUserService(mockRepo, auth).Login(ctx, model.LoginRequest{Email: "bob@example.com", Password: "abc12345!"})

		assert.Equal(t, ErrInvalidCredentials, err)
	})
}
