package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/mingchang/meatshop/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var untraced = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// GinMiddleware starts a server span per request. Probe and scrape endpoints
// are skipped.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("meatshop/http")
	return func(c *gin.Context) {
		if _, skip := untraced[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		method := strings.ToUpper(c.Request.Method)
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, method+" "+c.Request.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		span.SetName(method + " " + route)
		span.SetAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("meatshop.area", area(route)),
		)
		if requestID := obscontext.RequestIDFromContext(c.Request.Context()); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		switch {
		case status >= http.StatusInternalServerError:
			if lastErr := c.Errors.Last(); lastErr != nil {
				span.RecordError(lastErr.Err)
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		case status == http.StatusTooManyRequests:
			span.AddEvent("rate_limited")
		}
	}
}

func area(route string) string {
	switch {
	case strings.HasPrefix(route, "/admin/api"):
		return "admin"
	case strings.HasPrefix(route, "/media"):
		return "media"
	default:
		return "public"
	}
}
