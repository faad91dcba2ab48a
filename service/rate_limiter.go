package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var ErrLimiterUnavailable = errors.New("request limiter unavailable")

// RequestLimiter bounds how often a reset can be requested for one identifier.
type RequestLimiter interface {
	CheckRequest(ctx context.Context, identifier string) error
}

// RedisRequestLimiter is a fixed-window counter: the first request in a
// window sets the key's TTL, later ones only increment it.
type RedisRequestLimiter struct {
	client ICacheClient
	limit  int
	window time.Duration
	prefix string
}

func NewRedisRequestLimiter(client ICacheClient, limit int, window time.Duration) *RedisRequestLimiter {
	return &RedisRequestLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "pwreset:req",
	}
}

func (l *RedisRequestLimiter) key(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	return l.prefix + ":" + hex.EncodeToString(sum[:])
}

// CheckRequest counts one request and returns ErrTooManyResetRequests once
// the window's budget is spent.
func (l *RedisRequestLimiter) CheckRequest(ctx context.Context, identifier string) error {
	key := l.key(identifier)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	} else if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl < 0 {
		// Repair a key left without TTL by an interrupted first request.
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}

	if count > int64(l.limit) {
		return ErrTooManyResetRequests
	}
	return nil
}
