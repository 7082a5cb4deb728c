// Package embedding 提供向量化服务客户端
package embedding

import (
	"context"
	"fmt"

	"deskmate-ai-api/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

const defaultEmbeddingModel = "text-embedding-3-small"

// NewEinoEmbedder 构造 OpenAI 兼容的 Eino Embedder。
// 维度需与向量库集合一致，cfg.Dimension 大于 0 时显式下发。
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultEmbeddingModel
	}

	embCfg := &openai.EmbeddingConfig{
		APIKey: cfg.APIKey,
		Model:  model,
	}
	if cfg.Endpoint != "" {
		embCfg.BaseURL = cfg.Endpoint
	}
	if cfg.Dimension > 0 {
		dim := cfg.Dimension
		embCfg.Dimensions = &dim
	}

	embedder, err := openai.NewEmbedder(ctx, embCfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return embedder, nil
}
