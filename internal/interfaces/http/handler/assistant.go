// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"

	"deskmate-ai-api/internal/application/answer"
	"deskmate-ai-api/internal/application/retrieval"
	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/interfaces/http/dto"
	"deskmate-ai-api/pkg/errors"
	"deskmate-ai-api/pkg/logger"
)

// AssistantHandler 问答处理器
type AssistantHandler struct {
	svc *answer.Service
	cfg *config.Config
}

// NewAssistantHandler 创建问答处理器
func NewAssistantHandler(svc *answer.Service, cfg *config.Config) *AssistantHandler {
	return &AssistantHandler{
		svc: svc,
		cfg: cfg,
	}
}

// Chat 文档问答
// @Summary 文档问答
// @Description 基于已收录文档回答问题，证据不足时返回降级应答
// @Tags Assistant
// @Accept json
// @Produce json
// @Param body body dto.AssistantRequest true "问答请求"
// @Success 200 {object} dto.Response[answer.ChatAnswer]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Chat(ctx, req.Question, req.ToAnswerOptions(provider, model))
	if err != nil {
		respondAnswerError(c, "chat failed", err)
		return
	}
	dto.Success(c, result)
}

// Command 命令生成
// @Summary 命令生成
// @Description 基于文档证据生成白名单内的 UI 命令计划
// @Tags Assistant
// @Accept json
// @Produce json
// @Param body body dto.AssistantRequest true "命令请求"
// @Success 200 {object} dto.Response[answer.CommandAnswer]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/assistant/command [post]
func (h *AssistantHandler) Command(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Command(ctx, req.Question, req.ToAnswerOptions(provider, model))
	if err != nil {
		respondAnswerError(c, "command failed", err)
		return
	}
	dto.Success(c, result)
}

// Ask 混合问答
// @Summary 混合问答
// @Description 先判定是否数据库问题，DB 问题走 SQL 混合链路，其余按意图分流到问答或命令
// @Tags Assistant
// @Accept json
// @Produce json
// @Param body body dto.AssistantRequest true "问答请求"
// @Success 200 {object} dto.Response[any]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/assistant/ask [post]
func (h *AssistantHandler) Ask(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Ask(ctx, req.Question, req.ToAnswerOptions(provider, model))
	if err != nil {
		respondAnswerError(c, "ask failed", err)
		return
	}
	dto.Success(c, result.Envelope())
}

// respondAnswerError 将应用层错误映射为 HTTP 响应。
// 入参问题回 400，向量检索未配置归一到 503，
// 其余带码错误按码映射，未识别错误归为 500。
func respondAnswerError(c *gin.Context, fallbackMsg string, err error) {
	ctx := c.Request.Context()
	if stderrors.Is(err, retrieval.ErrInvalidInput) {
		dto.BadRequest(c, err.Error())
		return
	}
	if stderrors.Is(err, retrieval.ErrVectorDisabled) {
		err = errors.Wrap(err, errors.CodeVectorDBError, "vector index not configured").
			WithDetail("vector store is unavailable, document search is degraded")
	}
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		logger.Warn(ctx, fallbackMsg, "code", string(appErr.Code), "error", appErr.Error())
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			Error: &dto.ErrorDetail{
				ErrorCode: string(appErr.Code),
				Details:   appErr.Detail,
			},
			TraceID: c.GetString("trace_id"),
		})
		return
	}
	logger.Error(ctx, fallbackMsg, err)
	dto.InternalError(c, fallbackMsg)
}
