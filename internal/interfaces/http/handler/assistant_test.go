package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"deskmate-ai-api/internal/application/retrieval"
	"deskmate-ai-api/pkg/errors"
)

func answerErrorRecorder(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/assistant/ask", nil)
	respondAnswerError(c, "ask failed", err)
	return w
}

func TestRespondAnswerErrorInvalidInput(t *testing.T) {
	_, err := retrieval.NewIndexer(nil, nil, nil, 0).UpsertDocuments(context.Background(), nil)
	w := answerErrorRecorder(t, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "documents are required")
}

func TestRespondAnswerErrorVectorDisabled(t *testing.T) {
	wrapped := fmt.Errorf("search docs: %w", retrieval.ErrVectorDisabled)
	w := answerErrorRecorder(t, wrapped)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "vector index not configured")
	assert.Contains(t, w.Body.String(), string(errors.CodeVectorDBError))
}

func TestRespondAnswerErrorCodedError(t *testing.T) {
	appErr := errors.New(errors.CodeSQLNotSelectOnly, "write statements are not allowed")
	w := answerErrorRecorder(t, fmt.Errorf("hybrid pipeline: %w", appErr))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "write statements are not allowed")
	assert.Contains(t, w.Body.String(), string(errors.CodeSQLNotSelectOnly))
}

func TestRespondAnswerErrorUnknownFallsTo500(t *testing.T) {
	w := answerErrorRecorder(t, fmt.Errorf("redis connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ask failed")
	assert.NotContains(t, w.Body.String(), "redis connection reset")
}
