// Package middleware 网关侧 HTTP 横切中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/pkg/logger"
)

// AuditConfig 审计日志配置
type AuditConfig struct {
	// SkipPaths 不记录的路径（精确匹配），探活与指标端点噪音大
	SkipPaths []string
}

// DefaultAuditSkipPaths 默认跳过审计的路径
var DefaultAuditSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// Audit 请求审计日志。
// 响应写完后输出一行结构化日志；trace_id 与 request_id
// 已由前置中间件写入 Context，随 logger 自动带出。
func Audit(cfg AuditConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "request served",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"ua", c.Request.UserAgent(),
			"user_id", c.GetString("user_id"),
			"resp_bytes", c.Writer.Size(),
		)
	}
}
