package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-management-backend/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block (default: 5)
	AttemptWindow time.Duration // window the attempts are counted in (default: 15min)
	BlockDuration time.Duration // block length (default: 15min)
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed logins per email and blocks the email once the
// limit is hit. Without Redis it never blocks.
type LoginTracker struct {
	client *goredis.Client
	config LoginTrackerConfig
}

func NewLoginTracker(client *goredis.Client, config LoginTrackerConfig) *LoginTracker {
	def := DefaultLoginTrackerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = def.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = def.BlockDuration
	}
	return &LoginTracker{client: client, config: config}
}

// Redis key patterns
const (
	failLoginPrefix    = "fail:login:user:"
	blockedLoginPrefix = "blocked:login:user:"
)

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: current count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// BlockedFor returns the remaining block time for email, or zero if it is not blocked.
func (lt *LoginTracker) BlockedFor(ctx context.Context, email string) (time.Duration, error) {
	if lt.client == nil {
		return 0, nil
	}
	ttl, err := lt.client.TTL(ctx, blockedLoginPrefix+email).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check login block: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// RecordFailure counts one failed attempt and reports whether email is now blocked.
func (lt *LoginTracker) RecordFailure(ctx context.Context, email, ip string) (bool, error) {
	if lt.client == nil {
		return false, nil
	}

	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{failLoginPrefix + email}, int(lt.config.AttemptWindow.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count login failure: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result type from Lua script")
	}

	logger.Log.Warn("Login failed", "email", email, "ip", ip, "attempts", count)

	if int(count) < lt.config.MaxAttempts {
		return false, nil
	}
	if err := lt.client.Set(ctx, blockedLoginPrefix+email, "1", lt.config.BlockDuration).Err(); err != nil {
		return true, fmt.Errorf("failed to set login block: %w", err)
	}
	logger.Log.Warn("Login blocked", "email", email, "ip", ip, "minutes", int(lt.config.BlockDuration.Minutes()))
	return true, nil
}

// Clear resets the failure counter after a successful login.
func (lt *LoginTracker) Clear(ctx context.Context, email string) error {
	if lt.client == nil {
		return nil
	}
	return lt.client.Del(ctx, failLoginPrefix+email).Err()
}
