package events

import (
	"context"
	"sync"
	"time"
)

// rateLimiter implements token bucket rate limiting for one upstream.
type rateLimiter struct {
	tokens         int
	maxTokens      int
	refillRate     time.Duration
	lastRefillTime time.Time
	mu             sync.Mutex
}

func newRateLimiter(maxTokens int, refillRate time.Duration) *rateLimiter {
	return &rateLimiter{
		tokens:         maxTokens,
		maxTokens:      maxTokens,
		refillRate:     refillRate,
		lastRefillTime: time.Now(),
	}
}

// wait blocks until a token is available or the context ends.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if rl.tryAcquire() {
				return nil
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefillTime)
	tokensToAdd := int(elapsed / rl.refillRate)

	if tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefillTime = now
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// multiRateLimiter manages per-upstream limiters keyed by source name.
type multiRateLimiter struct {
	limiters map[string]*rateLimiter
	mu       sync.RWMutex
}

func newMultiRateLimiter() *multiRateLimiter {
	return &multiRateLimiter{
		limiters: make(map[string]*rateLimiter),
	}
}

func (mrl *multiRateLimiter) addLimiter(source string, maxTokens int, refillRate time.Duration) {
	mrl.mu.Lock()
	defer mrl.mu.Unlock()

	mrl.limiters[source] = newRateLimiter(maxTokens, refillRate)
}

// wait waits for the named source's limiter. An unknown source passes through.
func (mrl *multiRateLimiter) wait(ctx context.Context, source string) error {
	mrl.mu.RLock()
	limiter, ok := mrl.limiters[source]
	mrl.mu.RUnlock()

	if !ok {
		return nil
	}

	return limiter.wait(ctx)
}
