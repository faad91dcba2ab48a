package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fruit-api/common"
	"fruit-api/config"
	"fruit-api/logger"
	"fruit-api/model"
	"fruit-api/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minResetTokenLength = 16
	maxResetTokenLength = 4096
)

// IssuedReset describes a reset that was handed to the notifier. Token is
// empty when an unknown email was answered without issuing anything.
type IssuedReset struct {
	Email     string
	Token     string
	ExpiresAt time.Time
}

// PasswordResetService issues reset tokens and consumes them.
type PasswordResetService struct {
	db       *sql.DB
	tokens   repository.IResetTokenRepository
	users    repository.IUserRepository
	signer   *ResetTokenSigner
	notifier Notifier
	limiter  RequestLimiter
	cfg      config.ResetConfig
	now      func() time.Time
}

// NewPasswordResetService wires the reset workflow. limiter may be nil.
func NewPasswordResetService(
	db *sql.DB,
	tokens repository.IResetTokenRepository,
	users repository.IUserRepository,
	signer *ResetTokenSigner,
	notifier Notifier,
	limiter RequestLimiter,
	cfg config.ResetConfig,
) *PasswordResetService {
	return &PasswordResetService{
		db:       db,
		tokens:   tokens,
		users:    users,
		signer:   signer,
		notifier: notifier,
		limiter:  limiter,
		cfg:      cfg,
		now:      time.Now,
	}
}

// RequestReset issues a reset token for email, stores it and mails the link.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (*IssuedReset, error) {
	email = model.NormalizeEmail(email)
	log := logger.Log.WithField("email", logger.MaskEmail(email))
	log.Info("Password reset requested")

	if s.limiter != nil {
		if err := s.limiter.CheckRequest(ctx, email); err != nil {
			if errors.Is(err, ErrTooManyResetRequests) {
				log.Warn("Password reset request rate limited")
				return nil, err
			}
			log.WithError(err).Warn("Reset request limiter unavailable, allowing request")
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("Password reset requested for unknown email")
			if s.cfg.ConcealUnknownEmail {
				return &IssuedReset{Email: email}, nil
			}
			return nil, ErrEmailNotFound
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	token, expiresAt, err := s.signer.Sign(user.ID.String())
	if err != nil {
		return nil, err
	}

	rec := &model.ResetToken{
		Token:     token,
		UserID:    user.ID.String(),
		ExpiresAt: expiresAt,
	}
	if err := s.storeToken(ctx, rec); err != nil {
		return nil, err
	}

	// The send is detached from the caller: a client that goes away mid-dial
	// must not revoke a token whose email may still be delivered.
	link := BuildResetLink(s.cfg.FrontendBaseURL, token)
	if err := s.notifier.SendPasswordReset(context.WithoutCancel(ctx), user.Email, link, s.cfg.TokenTTL); err != nil {
		log.WithError(err).Error("Failed to send password reset email, revoking token")
		if delErr := s.tokens.DeleteByToken(context.WithoutCancel(ctx), token); delErr != nil {
			log.WithError(delErr).Error("Failed to revoke undelivered password reset token")
		}
		return nil, ErrNotificationFailed
	}

	log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"expires_at": expiresAt,
	}).Info("Password reset token issued")

	return &IssuedReset{Email: user.Email, Token: token, ExpiresAt: expiresAt}, nil
}

// storeToken purges expired records, supersedes the user's older tokens and
// inserts rec, all in one transaction.
func (s *PasswordResetService) storeToken(ctx context.Context, rec *model.ResetToken) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	purged, err := s.tokens.DeleteExpired(ctx, tx, s.now())
	if err != nil {
		return fmt.Errorf("could not purge expired reset tokens: %w", err)
	}
	if purged > 0 {
		logger.Log.WithField("purged", purged).Info("Purged expired password reset tokens")
	}

	if _, err := s.tokens.DeleteByUserID(ctx, tx, rec.UserID); err != nil {
		return fmt.Errorf("could not supersede reset tokens: %w", err)
	}

	if err := s.tokens.Create(ctx, tx, rec); err != nil {
		return fmt.Errorf("could not store reset token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// ResetPassword consumes token and sets newPassword on the bound account.
//
// The signature is checked first, then the stored record is read under a row
// lock and the outcome decided in this order: unknown, expired, locked,
// password policy, missing user, success. Rejections that change the record
// (counter increments, deletions) are committed before the rejection is
// returned.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !plausibleToken(token) {
		logger.Log.WithField("length", len(token)).Warn("Rejected structurally invalid reset token")
		return ErrInvalidToken
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		logger.Log.WithError(err).Warn("Reset token failed verification")
		return ErrInvalidToken
	}

	log := logger.Log.WithField("user_id", claims.Subject)

	// Hashing happens outside the row lock; the result is only used if the
	// record turns out to be consumable.
	policyErr := common.ValidatePasswordComplexity(newPassword)
	var hashed string
	if policyErr == nil {
		h, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("could not hash password: %w", err)
		}
		hashed = string(h)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	outcome, err := s.consume(ctx, tx, token, claims.Subject, policyErr, hashed)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	if outcome != nil {
		log.WithError(outcome).Warn("Password reset rejected")
		return outcome
	}
	log.Info("Password reset successfully")
	return nil
}

// consume runs the state machine against the locked record. The first return
// value is the rejection to report after commit; the second is an
// infrastructure failure that aborts the transaction.
func (s *PasswordResetService) consume(ctx context.Context, tx *sql.Tx, token, subject string, policyErr error, hashed string) (outcome error, err error) {
	rec, err := s.tokens.GetForUpdate(ctx, tx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken, nil
		}
		return nil, fmt.Errorf("could not load reset token: %w", err)
	}
	if rec.Used || rec.UserID != subject {
		return ErrInvalidToken, nil
	}

	if rec.ExpiredAt(s.now()) {
		if err := s.tokens.Delete(ctx, tx, token); err != nil {
			return nil, fmt.Errorf("could not delete expired reset token: %w", err)
		}
		return ErrResetTokenExpired, nil
	}

	maxAttempts := s.cfg.MaxAttempts
	if rec.Locked(maxAttempts) {
		if err := s.tokens.Delete(ctx, tx, token); err != nil {
			return nil, fmt.Errorf("could not delete locked reset token: %w", err)
		}
		return ErrResetAttemptsExhausted, nil
	}

	if policyErr != nil {
		failed, err := s.tokens.IncrementFailedAttempts(ctx, tx, token)
		if err != nil {
			return nil, fmt.Errorf("could not record failed attempt: %w", err)
		}
		if failed >= maxAttempts {
			if err := s.tokens.Delete(ctx, tx, token); err != nil {
				return nil, fmt.Errorf("could not delete locked reset token: %w", err)
			}
			return ErrResetAttemptsExhausted, nil
		}
		return &PasswordFormatError{Err: policyErr, Remaining: maxAttempts - failed}, nil
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return ErrInvalidUserID, nil
	}

	// A token whose user has gone away is kept, only the attempt is counted.
	if _, err := s.users.GetUserByID(ctx, tx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if err := s.tokens.IncrementAttemptCount(ctx, tx, token); err != nil {
				return nil, fmt.Errorf("could not record attempt: %w", err)
			}
			return ErrUserNotFound, nil
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, tx, userID, hashed); err != nil {
		return nil, fmt.Errorf("could not update password: %w", err)
	}
	if err := s.tokens.Delete(ctx, tx, token); err != nil {
		return nil, fmt.Errorf("could not consume reset token: %w", err)
	}
	return nil, nil
}

func plausibleToken(token string) bool {
	n := len(token)
	return n >= minResetTokenLength && n <= maxResetTokenLength && strings.Count(token, ".") == 2
}
