package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests to the same host.
// Responsibilities:
// - Keep one token bucket per host
// - Block callers until the host's next slot, or until ctx is done
type HostLimiter interface {
	Wait(ctx context.Context, host string) error
}

// ConcurrentHostLimiter allows at most one request per host every
// interval. An interval of zero or less disables limiting.
type ConcurrentHostLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
}

func NewConcurrentHostLimiter(interval time.Duration) *ConcurrentHostLimiter {
	return &ConcurrentHostLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *ConcurrentHostLimiter) Wait(ctx context.Context, host string) error {
	if l.interval <= 0 {
		return ctx.Err()
	}
	return l.limiterFor(host).Wait(ctx)
}

func (l *ConcurrentHostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	hostLimiter, exists := l.limiters[host]
	if !exists {
		hostLimiter = rate.NewLimiter(rate.Every(l.interval), 1)
		l.limiters[host] = hostLimiter
	}
	return hostLimiter
}

// HostCount returns the number of hosts seen so far.
func (l *ConcurrentHostLimiter) HostCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// NoopLimiter never blocks.
type NoopLimiter struct{}

func (NoopLimiter) Wait(ctx context.Context, host string) error {
	return ctx.Err()
}
