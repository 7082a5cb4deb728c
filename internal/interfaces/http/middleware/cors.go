// Package middleware 网关侧 HTTP 横切中间件
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig 跨域放行配置，字段留空时取宽松默认值
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORS 跨域中间件。桌面壳层走本地回环，默认放开全部来源。
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     orDefault(cfg.AllowedOrigins, []string{"*"}),
		AllowMethods:     orDefault(cfg.AllowedMethods, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowHeaders:     orDefault(cfg.AllowedHeaders, []string{"Origin", "Accept", "Content-Type", "Authorization", "X-Request-ID"}),
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func orDefault(vals, def []string) []string {
	if len(vals) == 0 {
		return def
	}
	return vals
}
