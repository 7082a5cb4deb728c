// Package router 注册路由与中间件链
package router

import (
	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/interfaces/http/handler"
	"deskmate-ai-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Assistant *handler.AssistantHandler
	Document  *handler.DocumentHandler
}

// Router 装配 HTTP 入口，持有 Engine 与全部处理器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers

	// rateLimit 由外部构造（依赖 Redis 客户端），未启用时为 nil
	rateLimit gin.HandlerFunc
}

// New 构建 Engine 并完成全部挂载，production 环境走 release 模式
func New(cfg *config.Config, handlers Handlers, rateLimit gin.HandlerFunc) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:    gin.New(),
		cfg:       cfg,
		handlers:  handlers,
		rateLimit: rateLimit,
	}

	r.engine.Use(r.middlewares()...)
	r.mountSystemRoutes()
	RegisterV1Routes(r.engine.Group("/v1"), handlers.Assistant, handlers.Document)

	return r
}

// Engine 返回底层 gin.Engine，交给 http.Server 托管
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// middlewares 按固定顺序组装中间件链，恢复在最外层、认证在最内层。
func (r *Router) middlewares() []gin.HandlerFunc {
	cfg := r.cfg
	chain := []gin.HandlerFunc{
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
			AllowedMethods: cfg.Security.CORS.AllowedMethods,
			AllowedHeaders: cfg.Security.CORS.AllowedHeaders,
		}),
	}

	if cfg.Observability.Tracing.Enabled {
		chain = append(chain, middleware.Trace(cfg.App.Name), middleware.TraceContext())
	}
	if cfg.Observability.Metrics.Enabled {
		chain = append(chain, middleware.Metrics())
	}

	chain = append(chain, middleware.Audit(middleware.AuditConfig{
		SkipPaths: middleware.DefaultAuditSkipPaths,
	}))

	if r.rateLimit != nil {
		chain = append(chain, r.rateLimit)
	}

	// 配置了密钥才启用认证
	chain = append(chain, middleware.Auth(middleware.AuthConfig{
		Secret:    cfg.Security.JWT.Secret,
		Issuer:    cfg.Security.JWT.Issuer,
		SkipPaths: middleware.DefaultSkipPaths,
		Enabled:   cfg.Security.JWT.Secret != "",
	}))

	return chain
}

// mountSystemRoutes 挂载健康检查与指标端点
func (r *Router) mountSystemRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
}
