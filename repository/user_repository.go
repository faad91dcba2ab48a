package repository

import (
	"context"
	"database/sql"
	"errors"
	"fruit-api/logger"
	"fruit-api/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("email already exists")

// IUserRepository is the credential store.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.User, error)
	UpdatePassword(ctx context.Context, tx *sql.Tx, id uuid.UUID, hashedPassword string) error
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (email, hashed_password) VALUES ($1, $2) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, user.Email, user.HashedPassword).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		logger.Log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, hashed_password, created_at FROM users WHERE lower(email) = lower($1)`
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID reads a user inside tx, locking the row for the password update
// that follows. When tx is nil the lookup runs without a lock.
func (r *UserRepository) GetUserByID(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.User, error) {
	user := &model.User{}
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, `SELECT id, email, hashed_password, created_at FROM users WHERE id = $1 FOR UPDATE`, id)
	} else {
		row = r.DB.QueryRowContext(ctx, `SELECT id, email, hashed_password, created_at FROM users WHERE id = $1`, id)
	}
	if err := row.Scan(&user.ID, &user.Email, &user.HashedPassword, &user.CreatedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Log.WithError(err).WithField("user_id", id).Error("Failed to execute get user by id query")
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, tx *sql.Tx, id uuid.UUID, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1 WHERE id = $2`
	res, err := tx.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", id).Error("Failed to execute update password query")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
