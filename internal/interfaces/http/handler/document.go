// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/internal/application/retrieval"
	"deskmate-ai-api/internal/interfaces/http/dto"
	"deskmate-ai-api/pkg/logger"
)

// DocumentHandler 文档收录处理器
type DocumentHandler struct {
	indexer *retrieval.Indexer
}

// NewDocumentHandler 创建文档收录处理器
func NewDocumentHandler(indexer *retrieval.Indexer) *DocumentHandler {
	return &DocumentHandler{
		indexer: indexer,
	}
}

// Ingest 批量收录文档
// @Summary 批量收录文档
// @Description 写入父文档并建立子块向量索引，重复 ID 覆盖旧内容
// @Tags Documents
// @Accept json
// @Produce json
// @Param body body dto.IngestDocumentsRequest true "文档列表"
// @Success 201 {object} dto.Response[dto.IngestDocumentsResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/documents [post]
func (h *DocumentHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IngestDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ids, err := h.indexer.UpsertDocuments(ctx, req.ToDocumentInputs())
	if err != nil {
		respondIndexError(c, "failed to ingest documents", err)
		return
	}

	dto.Created(c, dto.IngestDocumentsResponse{
		IDs:   ids,
		Count: len(ids),
	})
}

// Delete 删除文档
// @Summary 删除文档
// @Description 删除父文档及其全部子块索引
// @Tags Documents
// @Produce json
// @Param id path string true "文档 ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id := c.Param("id")
	if id == "" {
		dto.BadRequest(c, "document id is required")
		return
	}

	if err := h.indexer.DeleteDocument(ctx, id); err != nil {
		respondIndexError(c, "failed to delete document", err)
		return
	}
	dto.NoContent(c)
}

// ListKeys 列出文档键
// @Summary 列出文档键
// @Description 返回全部已收录父文档的 ID
// @Tags Documents
// @Produce json
// @Success 200 {object} dto.Response[dto.DocumentKeysResponse]
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/documents/keys [get]
func (h *DocumentHandler) ListKeys(c *gin.Context) {
	ctx := c.Request.Context()

	keys, err := h.indexer.ListDocumentKeys(ctx)
	if err != nil {
		respondIndexError(c, "failed to list document keys", err)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	dto.Success(c, dto.DocumentKeysResponse{
		Keys:  keys,
		Count: len(keys),
	})
}

// respondIndexError 将索引层错误映射为 HTTP 响应
// 向量能力未配置返回 503，其余按输入类错误与内部错误区分。
func respondIndexError(c *gin.Context, fallbackMsg string, err error) {
	ctx := c.Request.Context()
	switch {
	case stderrors.Is(err, retrieval.ErrInvalidInput):
		dto.BadRequest(c, err.Error())
	case stderrors.Is(err, retrieval.ErrVectorDisabled):
		logger.Warn(ctx, fallbackMsg, "error", err.Error())
		dto.ServiceUnavailable(c, "vector index not configured")
	default:
		logger.Error(ctx, fallbackMsg, err)
		dto.InternalError(c, fallbackMsg)
	}
}
