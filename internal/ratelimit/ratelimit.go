package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store counts hits for a key inside a fixed window that starts on the
// first hit. It returns the count including this hit and the time left
// in the window.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	// non-positive limit disables limiting
	if l.limit <= 0 {
		return Decision{Allowed: true}, nil
	}

	count, resetIn, err := l.store.Hit(ctx, key, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit hit %q: %w", key, err)
	}

	if count > int64(l.limit) {
		if resetIn < 0 {
			resetIn = 0
		}
		return Decision{Allowed: false, RetryAfter: resetIn}, nil
	}

	return Decision{Allowed: true, Remaining: l.limit - int(count)}, nil
}
