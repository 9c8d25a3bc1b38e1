package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter guards the global outbound-send budget over a rolling window.
// Reserve grants up to n send slots and never over-commits the budget, even
// across concurrent dispatch runs in separate processes. Release hands back
// slots that were reserved but not used (failed sends).
type Limiter interface {
	Reserve(ctx context.Context, n int) (int, error)
	Release(ctx context.Context, n int) error
}

// SentCounter is the slice of the match store the StoreLimiter needs: one
// consistent count of sends inside the trailing window.
type SentCounter interface {
	CountSentSince(ctx context.Context, since time.Time) (int, error)
}

// StoreLimiter derives the budget from persisted sent_at timestamps in a
// single query. Reservations are implicit: a slot is consumed only when the
// match row is actually marked sent, so Release is a no-op. Suitable for
// single-instance deployments; multi-instance setups should prefer
// RedisLimiter, whose reservation is atomic across processes.
type StoreLimiter struct {
	counter SentCounter
	budget  int
	window  time.Duration
	now     func() time.Time
}

func NewStoreLimiter(counter SentCounter, budget int, window time.Duration) *StoreLimiter {
	if window <= 0 {
		window = time.Hour
	}
	return &StoreLimiter{counter: counter, budget: budget, window: window, now: time.Now}
}

func (l *StoreLimiter) Reserve(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	used, err := l.counter.CountSentSince(ctx, l.now().Add(-l.window))
	if err != nil {
		return 0, fmt.Errorf("ratelimit: count sent: %w", err)
	}
	return Grant(l.budget, used, n), nil
}

func (l *StoreLimiter) Release(_ context.Context, _ int) error {
	return nil
}

// Grant clamps a request of n slots against budget-used, never below zero.
func Grant(budget, used, n int) int {
	remaining := budget - used
	if remaining <= 0 {
		return 0
	}
	if n > remaining {
		return remaining
	}
	return n
}

// reserveScript atomically checks the current and previous hour buckets and
// increments the current one by however many slots fit. Counting the whole
// previous bucket inside the window is deliberately conservative: the limiter
// may under-grant near a bucket boundary but can never exceed the budget.
var reserveScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local prev = tonumber(redis.call('GET', KEYS[2]) or '0')
local budget = tonumber(ARGV[1])
local want = tonumber(ARGV[2])
local remaining = budget - cur - prev
if remaining <= 0 then
  return 0
end
local grant = want
if grant > remaining then
  grant = remaining
end
redis.call('INCRBY', KEYS[1], grant)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
return grant
`)

type RedisLimiter struct {
	client *redis.Client
	budget int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, budget int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Hour
	}
	return &RedisLimiter{
		client: client,
		budget: budget,
		window: window,
		prefix: "dispatch:sends",
		now:    time.Now,
	}
}

func (l *RedisLimiter) bucketKeys() (string, string) {
	bucket := l.now().UTC().Truncate(l.window).Unix()
	prev := bucket - int64(l.window.Seconds())
	return fmt.Sprintf("%s:%d", l.prefix, bucket), fmt.Sprintf("%s:%d", l.prefix, prev)
}

func (l *RedisLimiter) Reserve(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	cur, prev := l.bucketKeys()
	ttl := int(2 * l.window.Seconds())

	granted, err := reserveScript.Run(ctx, l.client, []string{cur, prev}, l.budget, n, ttl).Int()
	if err != nil {
		return 0, fmt.Errorf("ratelimit: redis reserve: %w", err)
	}
	return granted, nil
}

func (l *RedisLimiter) Release(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	cur, _ := l.bucketKeys()
	if err := l.client.DecrBy(ctx, cur, int64(n)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis release: %w", err)
	}
	return nil
}
