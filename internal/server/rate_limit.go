package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mingchang/meatshop/internal/observability/logger"
	obsmetrics "github.com/mingchang/meatshop/internal/observability/metrics"
	"github.com/mingchang/meatshop/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	rateLimitReasonIPRate   = "ip-rate"
	rateLimitReasonInFlight = "in-flight"

	msgRateLimited = "提交過於頻繁，請稍後再試。Too many submissions, please try again later."
)

// ContactRateLimit throttles public inquiry submissions per client IP and
// refuses a second submission while one from the same client is running.
// Redis failures let the request through.
func (s *Server) ContactRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.contactLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		clientIP := c.ClientIP()

		result, err := s.contactLimiter.Allow(ctx, clientIP)
		if err != nil {
			logger.FromContext(ctx).Warn("contact rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.denyContactRateLimit(c, endpoint, rateLimitReasonIPRate, result.RetryAfter)
			return
		}

		release, err := s.contactLimiter.Acquire(ctx, clientIP)
		switch {
		case errors.Is(err, ratelimit.ErrInFlight):
			s.denyContactRateLimit(c, endpoint, rateLimitReasonInFlight, time.Second)
			return
		case err != nil:
			logger.FromContext(ctx).Warn("contact in-flight lock failed", zap.Error(err))
			c.Next()
			return
		}
		defer release()

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Next()
	}
}

func (s *Server) denyContactRateLimit(c *gin.Context, endpoint, reason string, retryAfter time.Duration) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("contact rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, reason, s.obsMetrics)

	c.Header("Retry-After", retryAfterSeconds(retryAfter))
	c.Header("X-Rate-Limited-Reason", reason)
	if isAjax(c) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"status":  "error",
			"message": msgRateLimited,
		})
		return
	}
	s.renderError(c, ErrRateLimited)
	c.Abort()
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
