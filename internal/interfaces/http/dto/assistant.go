// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"deskmate-ai-api/internal/application/answer"
)

// AssistantRequest 问答请求
// chat / command / ask 三个入口共用同一请求体。
type AssistantRequest struct {
	Question    string   `json:"question" binding:"required,max=5000"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// ToAnswerOptions 转换为应用层调用选项
// Provider/Model 已由处理器按配置解析，此处仅透传采样参数。
func (r *AssistantRequest) ToAnswerOptions(provider, model string) answer.Options {
	return answer.Options{
		Provider:    provider,
		Model:       model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
}
