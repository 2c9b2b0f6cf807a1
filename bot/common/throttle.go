package common

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter throttles passcode attempts per caller. Each key gets its own
// token bucket refilled at perMinute tokens per minute.
type AttemptLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*attemptBucket
	now      func() time.Time
}

type attemptBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewAttemptLimiter creates a limiter allowing burst immediate attempts and
// perMinute sustained attempts per key
func NewAttemptLimiter(perMinute float64, burst int) *AttemptLimiter {
	return &AttemptLimiter{
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		limiters: make(map[string]*attemptBucket),
		now:      time.Now,
	}
}

// Allow reports whether key may make another attempt now, consuming a token
func (l *AttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.limiters[key]
	if !ok {
		bucket = &attemptBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.AllowN(now, 1)
}

// Prune forgets keys idle for longer than idle and returns how many were removed
func (l *AttemptLimiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for key, bucket := range l.limiters {
		if bucket.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}
