package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// RateLimitResult is the outcome of one bucket check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucket refills at rate tokens per millisecond up to burst and takes
// one token per call. State lives in a hash so refill and take are atomic.
// Returns {allowed, retry_after_ms, remaining}.
var tokenBucket = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl_ms = tonumber(ARGV[4])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now

tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl_ms)

return {allowed, wait, math.floor(tokens)}
`)

// CheckIPRateLimit takes one token from the bucket of ip within a named
// group such as "auth". The IP is hashed before it reaches Redis.
// Redis failures fail open.
func (c *Cache) CheckIPRateLimit(ctx context.Context, bucket, ip string, ratePerSecond, burst int) (*RateLimitResult, error) {
	now := time.Now()
	if ratePerSecond <= 0 || burst <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: now}, nil
	}

	perMS := float64(ratePerSecond) / 1000
	// Idle keys expire once the bucket would be full again.
	fill := time.Duration(float64(burst)/float64(ratePerSecond)*float64(time.Second)) + time.Second

	key := rateLimitPrefix + bucket + ":" + hashIP(ip)
	res, err := tokenBucket.Run(ctx, c.client, []string{key},
		perMS, burst, now.UnixMilli(), fill.Milliseconds(),
	).Int64Slice()
	if err != nil || len(res) != 3 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: now}, nil //nolint:nilerr
	}

	wait := time.Duration(res[1]) * time.Millisecond
	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  res[2],
		ResetAt:    now.Add(wait),
		RetryAfter: wait,
	}, nil
}

// hashIP truncates sha256(ip) to 16 hex characters.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
