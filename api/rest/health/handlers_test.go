package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/starterkit/server/internal/cache"
	"codeberg.org/starterkit/server/internal/errors"
)

func newRouter(checks map[string]Check) *gin.Engine {
	gin.SetMode(gin.TestMode)

	d := errors.NewDispatcher(errors.ModeDevelopment, nil)

	r := gin.New()
	r.Use(d.Recovery(io.Discard), d.Middleware())
	r.GET("/health", Handler(checks))
	r.GET("/api/v1/ping", PingHandler)

	return r
}

func TestHandler_Healthy(t *testing.T) {
	r := newRouter(map[string]Check{
		"postgres": func(context.Context) error { return nil },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, map[string]string{"postgres": "ok"}, resp.Checks)
}

func TestHandler_CacheDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close() //nolint:errcheck // test cleanup

	r := newRouter(map[string]Check{
		"redis": cache.NewFromClient(rdb).Ping,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Redis Connection Error")
}

func TestPingHandler(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
