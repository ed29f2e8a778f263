package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// takeToken refills the bucket for the time elapsed since its last use and
// takes one token. Tokens come back as a string since Redis truncates Lua
// numbers to integers.
var takeToken = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens), ts}
`)

// TokenBucket is a Redis-backed bucket refilling at rate tokens per second
// up to burst.
type TokenBucket struct {
	client redis.Scripter
	rate   float64
	burst  int
	ttl    time.Duration
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func NewTokenBucket(client redis.Scripter, rate float64, burst int) (*TokenBucket, error) {
	if client == nil {
		return nil, errors.New("token bucket needs a redis client")
	}
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("token bucket rate and burst must be positive")
	}
	return &TokenBucket{client: client, rate: rate, burst: burst, ttl: bucketTTL(rate, burst)}, nil
}

// Allow takes one token from the bucket stored at key.
func (t *TokenBucket) Allow(ctx context.Context, key string) (*Result, error) {
	if t == nil {
		return nil, errors.New("token bucket not configured")
	}
	if key == "" {
		return nil, errors.New("token bucket key is empty")
	}
	res, err := takeToken.Run(ctx, t.client, []string{key}, t.rate, t.burst, t.ttl.Milliseconds()).Slice()
	if err != nil {
		return nil, err
	}
	return parseResult(res, t.rate, t.burst)
}

func parseResult(res []any, rate float64, burst int) (*Result, error) {
	if len(res) < 3 {
		return nil, fmt.Errorf("invalid rate limit script response: %v", res)
	}
	allowed, ok := res[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid allowed flag %T", res[0])
	}
	raw, ok := res[1].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token count %T", res[1])
	}
	tokens, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token count %q: %w", raw, err)
	}

	out := &Result{
		Allowed:   allowed == 1,
		Limit:     burst,
		Remaining: int(math.Floor(tokens)),
	}
	if !out.Allowed {
		out.RetryAfter = retryAfter(tokens, rate)
	}
	return out, nil
}

// retryAfter is the time until one whole token is available again.
func retryAfter(tokens, rate float64) time.Duration {
	needed := 1 - tokens
	if needed <= 0 || rate <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(needed / rate * float64(time.Second)))
}

func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}
