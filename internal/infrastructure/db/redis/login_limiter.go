package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLoginLimit  = 10
	defaultLoginWindow = 15 * time.Minute
)

// incrWithExpiry increments the attempt counter and starts the window on the
// first hit, atomically.
var incrWithExpiry = redis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return c
`)

// LoginLimiter throttles login attempts per userId with a fixed window.
// Key format: login_attempts:<userId>
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewLoginLimiter creates a limiter allowing limit attempts per window.
// Non-positive values fall back to 10 attempts per 15 minutes.
func NewLoginLimiter(client *redis.Client, limit int, window time.Duration) *LoginLimiter {
	if limit <= 0 {
		limit = defaultLoginLimit
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	return &LoginLimiter{client: client, limit: limit, window: window}
}

// Allow records an attempt for userID and reports whether it is within the limit.
func (l *LoginLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	count, err := incrWithExpiry.Run(ctx, l.client, []string{l.key(userID)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return count <= int64(l.limit), nil
}

// Reset clears the attempt counter, typically after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, userID string) error {
	if err := l.client.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(userID string) string {
	return fmt.Sprintf("login_attempts:%s", userID)
}
