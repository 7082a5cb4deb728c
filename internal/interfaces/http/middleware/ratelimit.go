// Package middleware 网关侧 HTTP 横切中间件
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/internal/interfaces/http/dto"
)

// RateLimitConfig 每秒限流配置，KeyPrefix 用于隔离多实例共用的 Redis
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond int
	KeyPrefix         string
}

// RateLimiter 由 redis 侧的滑动窗口实现
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP 加路径做每秒限流，限流器故障时放行
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	limit := cfg.RequestsPerSecond
	if limit <= 0 {
		limit = 100
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "anonymous"
		}
		key := prefix + ":" + ip + ":" + c.Request.URL.Path

		allowed, err := limiter.Allow(c.Request.Context(), key, limit, time.Second)
		switch {
		case err != nil:
			c.Next()
		case !allowed:
			dto.Error(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
		default:
			c.Next()
		}
	}
}
