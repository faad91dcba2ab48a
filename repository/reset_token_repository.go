// file: repository/reset_token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fruit-api/logger"
	"fruit-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// IResetTokenRepository defines the contract for password reset token storage.
// Every mutation runs inside the caller's transaction so that a lookup and the
// writes that follow it are serialized on the token row.
type IResetTokenRepository interface {
	Create(ctx context.Context, tx *sql.Tx, token *model.ResetToken) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, token string) (*model.ResetToken, error)
	IncrementFailedAttempts(ctx context.Context, tx *sql.Tx, token string) (int, error)
	IncrementAttemptCount(ctx context.Context, tx *sql.Tx, token string) error
	Delete(ctx context.Context, tx *sql.Tx, token string) error
	DeleteByUserID(ctx context.Context, tx *sql.Tx, userID string) (int64, error)
	DeleteExpired(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error)
	DeleteByToken(ctx context.Context, token string) error
}

// ResetTokenRepository implements IResetTokenRepository on PostgreSQL.
type ResetTokenRepository struct {
	DB *sql.DB
}

// NewResetTokenRepository creates a new ResetTokenRepository.
func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{DB: db}
}

// Create inserts a new reset token record with zeroed counters.
func (r *ResetTokenRepository) Create(ctx context.Context, tx *sql.Tx, token *model.ResetToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new password reset token")

	query := `INSERT INTO password_reset_tokens (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING created_at, used, attempt_count, failed_attempts`
	err := tx.QueryRowContext(ctx, query, token.Token, token.UserID, token.ExpiresAt).
		Scan(&token.CreatedAt, &token.Used, &token.AttemptCount, &token.FailedAttempts)
	if err != nil {
		log.WithError(err).Error("Failed to execute create password reset token query")
		return err
	}
	return nil
}

// GetForUpdate loads a token record and locks its row until tx ends.
// It returns sql.ErrNoRows when the token is unknown or already deleted.
func (r *ResetTokenRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, token string) (*model.ResetToken, error) {
	rec := &model.ResetToken{}
	query := `SELECT token, user_id, created_at, expires_at, used, attempt_count, failed_attempts FROM password_reset_tokens WHERE token = $1 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, token).Scan(
		&rec.Token, &rec.UserID, &rec.CreatedAt, &rec.ExpiresAt, &rec.Used, &rec.AttemptCount, &rec.FailedAttempts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Log.Info("Password reset token not found for update")
		} else {
			logger.Log.WithError(err).Error("Failed to execute get password reset token for update query")
		}
		return nil, err
	}
	return rec, nil
}

// IncrementFailedAttempts records a rejected submission and returns the new failure count.
func (r *ResetTokenRepository) IncrementFailedAttempts(ctx context.Context, tx *sql.Tx, token string) (int, error) {
	var failed int
	query := `UPDATE password_reset_tokens SET failed_attempts = failed_attempts + 1, attempt_count = attempt_count + 1 WHERE token = $1 RETURNING failed_attempts`
	if err := tx.QueryRowContext(ctx, query, token).Scan(&failed); err != nil {
		logger.Log.WithError(err).Error("Failed to execute increment failed attempts query")
		return 0, err
	}
	return failed, nil
}

// IncrementAttemptCount records a submission that was rejected for a reason
// other than the password itself.
func (r *ResetTokenRepository) IncrementAttemptCount(ctx context.Context, tx *sql.Tx, token string) error {
	query := `UPDATE password_reset_tokens SET attempt_count = attempt_count + 1 WHERE token = $1`
	if _, err := tx.ExecContext(ctx, query, token); err != nil {
		logger.Log.WithError(err).Error("Failed to execute increment attempt count query")
		return err
	}
	return nil
}

// Delete removes a token record. Deleting an absent token is not an error.
func (r *ResetTokenRepository) Delete(ctx context.Context, tx *sql.Tx, token string) error {
	query := `DELETE FROM password_reset_tokens WHERE token = $1`
	if _, err := tx.ExecContext(ctx, query, token); err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete password reset token query")
		return err
	}
	return nil
}

// DeleteByUserID removes every outstanding token of a user, so that a newly
// issued link supersedes the older ones.
func (r *ResetTokenRepository) DeleteByUserID(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	log := logger.Log.WithField("user_id", userID)

	query := `DELETE FROM password_reset_tokens WHERE user_id = $1`
	res, err := tx.ExecContext(ctx, query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete password reset tokens by user query")
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.WithField("deleted", n).Info("Superseded outstanding password reset tokens")
	}
	return n, nil
}

// DeleteExpired purges records whose expiry is before now.
func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < $1`
	res, err := tx.ExecContext(ctx, query, now)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired password reset tokens query")
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByToken removes a token outside of any transaction.
func (r *ResetTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM password_reset_tokens WHERE token = $1`
	if _, err := r.DB.ExecContext(ctx, query, token); err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete password reset token query")
		return err
	}
	return nil
}
