package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(t *testing.T, max int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimit(client, "cc:", max, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, mr
}

func doGet(r http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.7:4242"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	r, mr := newLimitedRouter(t, 2)

	assert.Equal(t, http.StatusOK, doGet(r).Code)
	w := doGet(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doGet(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())

	assert.True(t, mr.Exists("cc:ratelimit:10.0.0.7"))
	ttl := mr.TTL("cc:ratelimit:10.0.0.7")
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}

func TestRateLimit_WindowResets(t *testing.T) {
	r, mr := newLimitedRouter(t, 1)
	assert.Equal(t, http.StatusOK, doGet(r).Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(r).Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doGet(r).Code)
}

func TestRateLimit_RedisDown(t *testing.T) {
	r, mr := newLimitedRouter(t, 5)
	mr.SetError("LOADING server is loading")
	w := doGet(r)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limiting error")
}

func TestRateLimit_PanicsOnBadConfig(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	assert.Panics(t, func() { RateLimit(nil, "", 1, time.Second) })
	assert.Panics(t, func() { RateLimit(client, "", 0, time.Second) })
	assert.Panics(t, func() { RateLimit(client, "", 1, 0) })
}
