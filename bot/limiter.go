package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter keeps one token bucket per Telegram user.
type userLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*entry
	rate     rate.Limit
	burst    int
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newUserLimiter(perSecond float64, burst int) *userLimiter {
	if burst < 1 {
		burst = 1
	}
	return &userLimiter{
		limiters: make(map[int64]*entry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *userLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.limiters[userID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[userID] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Cleanup forgets users idle for longer than maxIdle.
func (l *userLimiter) Cleanup(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
			removed++
		}
	}
	return removed
}
