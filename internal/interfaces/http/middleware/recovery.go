// Package middleware 网关侧 HTTP 横切中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/internal/interfaces/http/dto"
	"deskmate-ai-api/pkg/logger"
)

// Recovery 捕获 handler panic，记录堆栈后统一回 500。
// 响应走 dto 错误包裹，与业务错误保持同一信封。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error(c.Request.Context(), "panic in handler",
				fmt.Errorf("%v", r),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)

			dto.Error(c, http.StatusInternalServerError, "internal server error")
			c.Abort()
		}()

		c.Next()
	}
}
