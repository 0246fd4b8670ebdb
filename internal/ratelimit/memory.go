package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	count     int64
	windowEnd time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || !now.Before(b.windowEnd) {
		s.sweep(now)
		b = &bucket{windowEnd: now.Add(window)}
		s.buckets[key] = b
	}

	b.count++

	return b.count, b.windowEnd.Sub(now), nil
}

// sweep drops expired buckets so one-off clients do not pile up.
func (s *MemoryStore) sweep(now time.Time) {
	for k, b := range s.buckets {
		if !now.Before(b.windowEnd) {
			delete(s.buckets, k)
		}
	}
}
