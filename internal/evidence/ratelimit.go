package evidence

import (
	"sync"
	"time"
)

// Limiter is a token bucket over wall-clock time. A burst up to capacity is
// allowed, then tokens refill continuously. Violations are counted but
// never block: the agent pays for them in process scoring, the server keeps
// answering.
type Limiter struct {
	mu       sync.Mutex
	capacity float64
	refill   float64 // tokens per second
	tokens   float64
	last     time.Time
	now      func() time.Time

	allowed    int
	violations int
}

// NewLimiter returns a full bucket. refillPeriod is the time to regain one
// token.
func NewLimiter(capacity int, refillPeriod time.Duration) *Limiter {
	return &Limiter{
		capacity: float64(capacity),
		refill:   1 / refillPeriod.Seconds(),
		tokens:   float64(capacity),
		now:      time.Now,
	}
}

// Allow consumes a token if one is available and reports whether the call
// was within the limit.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.last.IsZero() {
		l.tokens += now.Sub(l.last).Seconds() * l.refill
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
	}
	l.last = now

	if l.tokens < 1 {
		l.violations++
		return false
	}
	l.tokens--
	l.allowed++
	return true
}

// Stats returns the allowed and violation counts so far.
func (l *Limiter) Stats() (allowed, violations int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowed, l.violations
}
