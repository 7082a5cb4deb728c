package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskmate-ai-api/internal/config"
)

// healthRouter 仅挂系统端点，依赖客户端全部缺省
func healthRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(cfg, nil, nil, nil)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/live", h.Live)
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthReportsVersion(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Version = "v1.4.0"
	r := healthRouter(cfg)

	w := doGet(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1.4.0", resp.Version)
}

func TestHealthWithoutConfig(t *testing.T) {
	r := healthRouter(nil)

	w := doGet(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestLiveAlwaysOK(t *testing.T) {
	r := healthRouter(nil)

	w := doGet(r, "/live")
	assert.Equal(t, http.StatusOK, w.Code)
}

// 必需依赖缺失时就绪检查返回 503，可选的 Milvus 只标记 disabled。
func TestReadyWithoutClients(t *testing.T) {
	r := healthRouter(nil)

	w := doGet(r, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp readyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)

	require.Contains(t, resp.Checks, "postgres")
	assert.Equal(t, "missing", resp.Checks["postgres"].Status)
	assert.Equal(t, "postgres client not configured", resp.Checks["postgres"].Error)

	require.Contains(t, resp.Checks, "redis")
	assert.Equal(t, "missing", resp.Checks["redis"].Status)

	require.Contains(t, resp.Checks, "milvus")
	assert.Equal(t, "disabled", resp.Checks["milvus"].Status)
	assert.Empty(t, resp.Checks["milvus"].Error)
}
