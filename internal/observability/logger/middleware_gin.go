package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/mingchang/meatshop/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	HeaderRequestID = "X-Request-Id"

	// ActorKey is the gin context key holding the authenticated admin
	// username, if any.
	ActorKey = "log_actor"

	maxRequestIDLen = 128
)

// MiddlewareConfig controls request logging.
type MiddlewareConfig struct {
	Debug           bool
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware tags the request context with a request id and client IP and
// writes one access line once the handler chain is done.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		requestID := requestIDFor(c.GetHeader(HeaderRequestID))
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		ctx = obscontext.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log := FromContext(c.Request.Context())
		if log == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		level := accessLevel(c.Request.URL.Path, status)
		if ce := log.Check(level, "http_request"); ce != nil {
			ce.Write(accessFields(c, cfg, route, status, time.Since(started))...)
		}
	}
}

func requestIDFor(header string) string {
	id := strings.TrimSpace(header)
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.NewString()
	}
	return id
}

func accessFields(c *gin.Context, cfg MiddlewareConfig, route string, status int, took time.Duration) []zap.Field {
	size := c.Writer.Size()
	if size < 0 {
		size = 0
	}
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("route", route),
		zap.Int("status", status),
		zap.Duration("took", took),
		zap.Int("bytes_out", size),
	}
	if lang := c.GetHeader("Accept-Language"); lang != "" {
		fields = append(fields, zap.String("accept_language", lang))
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		fields = append(fields, zap.Bool("ajax", true))
	}
	if actor := c.GetString(ActorKey); actor != "" {
		fields = append(fields, zap.String("actor", actor))
	}

	lastErr := c.Errors.Last()
	if lastErr == nil {
		return fields
	}
	if cfg.ErrorClassifier != nil {
		errorType, errorCode := cfg.ErrorClassifier(lastErr.Err)
		fields = append(fields, zap.String("error_type", errorType), zap.String("error_code", errorCode))
	}
	if cfg.Debug || status >= http.StatusInternalServerError {
		fields = append(fields, zap.String("error", lastErr.Err.Error()))
	}
	return fields
}

// accessLevel keeps probes and media hits out of info logs.
func accessLevel(path string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusTooManyRequests:
		return zapcore.WarnLevel
	case path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/media/"):
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
