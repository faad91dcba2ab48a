package app

import (
	"context"
	"database/sql"
	"fruit-api/config"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SentReset is a reset email captured by RecordingNotifier.
type SentReset struct {
	To        string
	Link      string
	ExpiresIn time.Duration
}

// RecordingNotifier keeps reset emails in memory instead of sending them.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []SentReset
	Err  error
}

func (n *RecordingNotifier) SendPasswordReset(_ context.Context, to, resetLink string, expiresIn time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, SentReset{To: to, Link: resetLink, ExpiresIn: expiresIn})
	return nil
}

// TestApp is an App whose notifier records instead of sending.
type TestApp struct {
	*App
	Notifier *RecordingNotifier
}

// NewTestApp wires the API for integration tests. redisClient may be nil.
func NewTestApp(database *sql.DB, redisClient *redis.Client, cfg *config.Config) *TestApp {
	notifier := &RecordingNotifier{}
	return &TestApp{
		App:      New(cfg, database, redisClient, notifier),
		Notifier: notifier,
	}
}
