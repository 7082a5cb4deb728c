package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"deskmate-ai-api/internal/application/retrieval"
)

// documentRouter 依赖全缺省的收录路由，只能走校验与降级分支
func documentRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDocumentHandler(retrieval.NewIndexer(nil, nil, nil, 0))
	r := gin.New()
	r.POST("/v1/documents", h.Ingest)
	r.GET("/v1/documents/keys", h.ListKeys)
	r.DELETE("/v1/documents/:id", h.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngestRejectsMalformedBody(t *testing.T) {
	r := documentRouter()
	w := doJSON(r, http.MethodPost, "/v1/documents", `{"documents": [`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestIngestRejectsBlankSource(t *testing.T) {
	r := documentRouter()
	body := `{"documents": [{"source": "   ", "content": "결재 절차 안내"}]}`
	w := doJSON(r, http.MethodPost, "/v1/documents", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "document 0: source is required")
}

func TestIngestWithoutVectorStack(t *testing.T) {
	r := documentRouter()
	body := `{"documents": [{"source": "사내 위키", "content": "연차 신청은 인사 시스템에서 진행합니다."}]}`
	w := doJSON(r, http.MethodPost, "/v1/documents", body)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "vector index not configured")
}

func TestDeleteBlankIDRejected(t *testing.T) {
	r := documentRouter()
	w := doJSON(r, http.MethodDelete, "/v1/documents/%20", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "document id is required")
}

func TestListKeysWithoutVectorStack(t *testing.T) {
	r := documentRouter()
	w := doJSON(r, http.MethodGet, "/v1/documents/keys", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "vector index not configured")
}
