package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeLimiter struct {
	allowed bool
	err     error
	lastKey string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.lastKey = key
	return f.allowed, f.err
}

func rateLimitRouter(cfg RateLimitConfig, limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(cfg, limiter))
	r.GET("/v1/assistant/chat", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hitChat(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/assistant/chat", nil)
	req.RemoteAddr = "192.168.0.7:54321"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	r := rateLimitRouter(RateLimitConfig{Enabled: false}, limiter)

	w := hitChat(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, limiter.lastKey, "disabled middleware must not touch the limiter")
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	r := rateLimitRouter(RateLimitConfig{Enabled: true}, nil)
	assert.Equal(t, http.StatusOK, hitChat(r).Code)
}

func TestRateLimitDenied(t *testing.T) {
	limiter := &fakeLimiter{allowed: false}
	r := rateLimitRouter(RateLimitConfig{Enabled: true, RequestsPerSecond: 1}, limiter)

	w := hitChat(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

// 限流 Key 为 前缀:客户端IP:路径
func TestRateLimitKeyShape(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	r := rateLimitRouter(RateLimitConfig{Enabled: true, KeyPrefix: "rl"}, limiter)

	hitChat(r)
	assert.Equal(t, "rl:192.168.0.7:/v1/assistant/chat", limiter.lastKey)
}

func TestRateLimitLimiterFailureOpensGate(t *testing.T) {
	limiter := &fakeLimiter{err: context.DeadlineExceeded}
	r := rateLimitRouter(RateLimitConfig{Enabled: true}, limiter)

	assert.Equal(t, http.StatusOK, hitChat(r).Code)
}
