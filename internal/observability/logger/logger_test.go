package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOperationFromSQL(t *testing.T) {
	cases := []struct {
		sql, op, table string
	}{
		{"SELECT * FROM `products` WHERE slug = ?", "SELECT", "products"},
		{`INSERT INTO "inquiries" ("id","name") VALUES (?,?)`, "INSERT", "inquiries"},
		{"UPDATE categories SET name_zh = ?", "UPDATE", "categories"},
		{"DELETE FROM product_images WHERE id = ?", "DELETE", "product_images"},
		{"WITH x AS (SELECT 1) SELECT * FROM x", "SELECT", "x"},
		{"PRAGMA foreign_keys = ON", "UNKNOWN", ""},
	}
	for _, tc := range cases {
		op, table := operationFromSQL(tc.sql)
		require.Equal(t, tc.op, op, tc.sql)
		require.Equal(t, tc.table, table, tc.sql)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("")
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, level)

	level, err = parseLevel(" warn ")
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, level)

	_, err = parseLevel("loud")
	require.Error(t, err)
}

func TestRequestIDFor(t *testing.T) {
	require.Equal(t, "abc-123", requestIDFor(" abc-123 "))
	require.Len(t, requestIDFor(""), 36)

	long := make([]byte, maxRequestIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	require.NotEqual(t, string(long), requestIDFor(string(long)))
}

func TestGinMiddlewareLogsAccessLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/admin/api/categories", func(c *gin.Context) {
		c.Set(ActorKey, "boss")
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin/api/categories", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "req-1", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)

	first := entries[0]
	require.Equal(t, zapcore.InfoLevel, first.Level)
	fields := first.ContextMap()
	require.Equal(t, "boss", fields["actor"])
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "/admin/api/categories", fields["route"])

	require.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestAccessLevel(t *testing.T) {
	require.Equal(t, zapcore.ErrorLevel, accessLevel("/contact/", http.StatusInternalServerError))
	require.Equal(t, zapcore.WarnLevel, accessLevel("/contact/", http.StatusTooManyRequests))
	require.Equal(t, zapcore.DebugLevel, accessLevel("/media/products/1.jpg", http.StatusOK))
	require.Equal(t, zapcore.InfoLevel, accessLevel("/products/", http.StatusNotFound))
}
