// Package router 注册路由与中间件链
package router

import (
	"deskmate-ai-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 挂载 v1 业务路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	assistantHandler *handler.AssistantHandler,
	documentHandler *handler.DocumentHandler,
) {
	// 问答入口
	assistant := v1.Group("/assistant")
	{
		assistant.POST("/chat", assistantHandler.Chat)
		assistant.POST("/command", assistantHandler.Command)
		assistant.POST("/ask", assistantHandler.Ask)
	}

	// 文档收录
	documents := v1.Group("/documents")
	{
		documents.POST("", documentHandler.Ingest)
		documents.GET("/keys", documentHandler.ListKeys)
		documents.DELETE("/:id", documentHandler.Delete)
	}
}
