// Package middleware 网关侧 HTTP 横切中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/internal/interfaces/http/dto"
	"deskmate-ai-api/pkg/utils"
)

// DefaultSkipPaths 免认证路径（探针与指标），按前缀匹配
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// AuthConfig 认证配置。Enabled 为 false 时中间件直接放行，
// 桌面端默认不开认证，暴露到局域网之外时配置密钥开启。
type AuthConfig struct {
	Secret    string
	Issuer    string
	SkipPaths []string
	Enabled   bool
}

// Auth Bearer Token 认证中间件
func Auth(cfg AuthConfig) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)

	return func(c *gin.Context) {
		if !cfg.Enabled || skipAuth(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			rejectUnauthorized(c, "authorization header required")
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			rejectUnauthorized(c, "authorization must use bearer scheme")
			return
		}

		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			msg := "invalid access token"
			if errors.Is(err, utils.ErrExpiredToken) {
				msg = "access token expired"
			}
			rejectUnauthorized(c, msg)
			return
		}

		// 注入用户标识，审计日志使用
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

func skipAuth(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// rejectUnauthorized 返回 401 并终止后续处理
func rejectUnauthorized(c *gin.Context, msg string) {
	dto.Error(c, http.StatusUnauthorized, msg)
	c.Abort()
}
