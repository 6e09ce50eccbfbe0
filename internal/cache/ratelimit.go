package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitTTLFloor keeps idle buckets around long enough to refill.
const rateLimitTTLFloor = 10 * time.Second

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	Limit      int64
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token bucket atomically.
// Time is passed in milliseconds so sub-second refill works at low rates.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- milliseconds
	local ttl = tonumber(ARGV[4])       -- seconds

	local data = redis.call('HMGET', key, 'tokens', 'ts')
	local tokens = tonumber(data[1]) or burst
	local ts = tonumber(data[2]) or now

	local elapsed = math.max(0, now - ts) / 1000
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_ms = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_ms = math.ceil((1 - tokens) / rate * 1000)
	end

	redis.call('HSET', key, 'tokens', tokens, 'ts', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_ms, math.floor(tokens)}
`)

// Allow consumes one token from the bucket for (scope, clientIP). The
// client IP is hashed before it reaches Redis.
//
// On Redis failure the request is allowed and the error is returned so the
// caller can log it.
func (c *Cache) Allow(ctx context.Context, scope, clientIP string, ratePerSecond, burst int) (*RateLimitResult, error) {
	open := &RateLimitResult{Allowed: true, Remaining: int64(burst), Limit: int64(burst)}
	if ratePerSecond <= 0 || burst <= 0 {
		return open, nil
	}

	key := fmt.Sprintf("%sratelimit:%s:%s", c.prefix, scope, hashIP(clientIP))
	ttl := bucketTTL(ratePerSecond, burst)

	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		ratePerSecond, burst, time.Now().UnixMilli(), int(ttl.Seconds()),
	).Int64Slice()
	if err != nil {
		return open, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return open, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
		Limit:      int64(burst),
	}, nil
}

// bucketTTL is the time an empty bucket needs to refill completely, with a floor.
func bucketTTL(ratePerSecond, burst int) time.Duration {
	refill := time.Duration(math.Ceil(float64(burst)/float64(ratePerSecond))) * time.Second
	if refill < rateLimitTTLFloor {
		return rateLimitTTLFloor
	}
	return refill
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
