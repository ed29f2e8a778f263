package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mingchang/meatshop/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyContactBucket   = "meatshop:contact:ip:%s"
	keyContactInflight = "meatshop:contact:inflight:%s"
	inflightTTL        = 10 * time.Second
)

// ErrInFlight is returned when the same client already has a submission
// being processed.
var ErrInFlight = errors.New("submission_in_flight")

// ContactLimiter throttles public inquiry submissions per client IP. A nil
// limiter allows everything.
type ContactLimiter struct {
	bucket   *TokenBucket
	inflight inflightMarker
}

// NewRedisClient returns nil when rate limiting is disabled.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (redis.UniversalClient, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis not reachable, contact submissions fail open", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func NewContactLimiter(cfg config.Config, client redis.UniversalClient) (*ContactLimiter, error) {
	if client == nil {
		return nil, nil
	}
	bucket, err := NewTokenBucket(client, cfg.RateLimit.ContactRate, cfg.RateLimit.ContactBurst)
	if err != nil {
		return nil, fmt.Errorf("contact rate limit: %w", err)
	}
	return &ContactLimiter{
		bucket:   bucket,
		inflight: inflightMarker{client: client},
	}, nil
}

func (l *ContactLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *ContactLimiter) Allow(ctx context.Context, clientIP string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyContactBucket, clientKey(clientIP)))
}

// Acquire marks a submission from clientIP as in flight. The returned
// function releases it.
func (l *ContactLimiter) Acquire(ctx context.Context, clientIP string) (func(), error) {
	if !l.Enabled() {
		return func() {}, nil
	}
	return l.inflight.mark(ctx, fmt.Sprintf(keyContactInflight, clientKey(clientIP)))
}

// clientKey keeps raw addresses out of Redis.
func clientKey(ip string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ip)))
	return hex.EncodeToString(sum[:12])
}
