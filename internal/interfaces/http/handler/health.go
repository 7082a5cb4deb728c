// Package handler HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/infrastructure/persistence/milvus"
	"deskmate-ai-api/internal/infrastructure/persistence/postgres"
	"deskmate-ai-api/internal/infrastructure/persistence/redis"
)

const readinessTimeout = 2 * time.Second

// HealthHandler 探活与就绪检查。
// Postgres 与 Redis 为必需依赖；Milvus 缺失或失败只降级不拦就绪，
// 向量检索路径自身带 disabled 降级。
type HealthHandler struct {
	version string
	pg      *postgres.Client
	redis   *redis.Client
	milvus  *milvus.Client
}

// NewHealthHandler 注入各依赖客户端，nil 客户端视为未配置
func NewHealthHandler(cfg *config.Config, pg *postgres.Client, redisClient *redis.Client, milvusClient *milvus.Client) *HealthHandler {
	h := &HealthHandler{
		pg:     pg,
		redis:  redisClient,
		milvus: milvusClient,
	}
	if cfg != nil {
		h.version = cfg.App.Version
	}
	return h
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type probeResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readyResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*probeResult `json:"checks,omitempty"`
}

type dependencyProbe struct {
	name     string
	required bool
	// check 为 nil 表示客户端未注入
	check func(ctx context.Context) error
}

func (h *HealthHandler) probes() []dependencyProbe {
	var pgCheck, redisCheck, milvusCheck func(ctx context.Context) error
	if h != nil && h.pg != nil {
		pgCheck = h.pg.HealthCheck
	}
	if h != nil && h.redis != nil {
		redisCheck = h.redis.HealthCheck
	}
	if h != nil && h.milvus != nil {
		milvusCheck = h.milvus.HealthCheck
	}
	return []dependencyProbe{
		{name: "postgres", required: true, check: pgCheck},
		{name: "redis", required: true, check: redisCheck},
		{name: "milvus", required: false, check: milvusCheck},
	}
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 返回服务自身状态与版本号
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Ready 就绪检查接口
// @Summary 就绪检查
// @Description 逐项探测依赖，必需依赖失败时返回 503
// @Tags System
// @Produce json
// @Success 200 {object} readyResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]*probeResult)
	ready := true

	for _, probe := range h.probes() {
		result := &probeResult{}
		checks[probe.name] = result

		if probe.check == nil {
			if probe.required {
				result.Status = "missing"
				result.Error = probe.name + " client not configured"
				ready = false
			} else {
				result.Status = "disabled"
			}
			continue
		}

		start := time.Now()
		err := probe.check(ctx)
		result.LatencyMs = time.Since(start).Milliseconds()
		switch {
		case err == nil:
			result.Status = "ok"
		case probe.required:
			result.Status = "error"
			result.Error = err.Error()
			ready = false
		default:
			result.Status = "degraded"
			result.Error = err.Error()
		}
	}

	resp := readyResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Description 进程存活即返回 200
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
