// Package middleware 网关侧 HTTP 横切中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deskmate-ai-api/pkg/logger"
)

// RequestIDHeader 客户端透传请求 ID 的头字段，缺省时服务端生成
const RequestIDHeader = "X-Request-ID"

// RequestID 复用或生成请求 ID，写入 Context 与响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Request = c.Request.WithContext(
			logger.WithContext(c.Request.Context(), logger.RequestIDKey, id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
