// Package llm 按配置装配 Eino ChatModel 客户端
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"deskmate-ai-api/internal/config"
)

// EinoFactory 按 provider 名惰性构建并复用 ChatModel。
// 所有 provider 都走 OpenAI 兼容协议，BaseURL 指向各自的网关。
type EinoFactory struct {
	config *config.LLMConfig
	mu     sync.RWMutex
	models map[string]model.BaseChatModel
}

func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// ChatModel 返回指定 provider 的客户端，provider 为空时取配置的默认渠道
func (f *EinoFactory) ChatModel(ctx context.Context, provider string) (model.BaseChatModel, error) {
	if provider == "" {
		provider = f.config.DefaultProvider
	}
	if m, ok := f.cached(provider); ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.models[provider]; ok {
		return m, nil
	}

	m, err := f.build(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("build chat model %q: %w", provider, err)
	}
	f.models[provider] = m
	return m, nil
}

func (f *EinoFactory) cached(provider string) (model.BaseChatModel, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.models[provider]
	return m, ok
}

func (f *EinoFactory) build(ctx context.Context, provider string) (model.BaseChatModel, error) {
	pc, ok := f.config.Providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q missing from llm config", provider)
	}

	temperature := float32(pc.Temperature)
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      pc.APIKey,
		BaseURL:     pc.BaseURL,
		Model:       pc.Model,
		MaxTokens:   &pc.MaxTokens,
		Temperature: &temperature,
		Timeout:     pc.Timeout,
	})
}
