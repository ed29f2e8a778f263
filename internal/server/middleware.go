package server

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mingchang/meatshop/internal/observability/logger"
	staffdomain "github.com/mingchang/meatshop/internal/staff/domain"
	"go.uber.org/zap"
)

const (
	contextStaffKey = "staff_user"
	basicAuthRealm  = `Basic realm="meatshop admin", charset="UTF-8"`
)

// AllowedHosts rejects requests whose Host header is not configured. An entry
// of "*" allows any host and an entry starting with "." matches the domain
// and its subdomains.
func (s *Server) AllowedHosts() gin.HandlerFunc {
	allowed := make([]string, 0, len(s.cfg.AllowedHosts))
	for _, h := range s.cfg.AllowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allowed = append(allowed, h)
		}
	}

	return func(c *gin.Context) {
		host := requestHost(c.Request.Host)
		if hostAllowed(host, allowed) {
			c.Next()
			return
		}
		logger.FromContext(c.Request.Context()).Warn("disallowed host", zap.String("host", host))
		c.String(http.StatusBadRequest, "Bad Request (400)")
		c.Abort()
	}
}

func requestHost(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if host, _, err := net.SplitHostPort(raw); err == nil {
		return strings.Trim(host, "[]")
	}
	return strings.Trim(raw, "[]")
}

func hostAllowed(host string, allowed []string) bool {
	if host == "" {
		return false
	}
	for _, pattern := range allowed {
		switch {
		case pattern == "*":
			return true
		case strings.HasPrefix(pattern, "."):
			if host == pattern[1:] || strings.HasSuffix(host, pattern) {
				return true
			}
		case host == pattern:
			return true
		}
	}
	return false
}

// AuthRequired authenticates staff with HTTP Basic credentials.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || strings.TrimSpace(username) == "" {
			c.Header("WWW-Authenticate", basicAuthRealm)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.staffSvc.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			if errors.Is(err, staffdomain.ErrInvalidCredentials) {
				c.Header("WWW-Authenticate", basicAuthRealm)
			}
			AbortWithError(c, err)
			return
		}

		c.Set(contextStaffKey, user)
		c.Set(logger.ActorKey, user.Username)
		c.Next()
	}
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := staffFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), user.Subject(), user.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func staffFromContext(c *gin.Context) (*staffdomain.StaffUser, bool) {
	value, ok := c.Get(contextStaffKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*staffdomain.StaffUser)
	return user, ok && user != nil
}
