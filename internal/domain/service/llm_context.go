// Package service 存放跨层共享的领域辅助。
// llm context 把工作流标识透传给 Eino 全局回调，作指标与追踪标签。
package service

import (
	"context"
	"strings"
)

type workflowKey struct{}
type providerKey struct{}

// WithWorkflowProvider 在进入一条 LLM 链路前写入工作流名与 provider。
// 空值不写入，读取时落回 "unknown"。
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	if w := strings.TrimSpace(workflow); w != "" {
		ctx = context.WithValue(ctx, workflowKey{}, w)
	}
	if p := strings.TrimSpace(provider); p != "" {
		ctx = context.WithValue(ctx, providerKey{}, p)
	}
	return ctx
}

func WorkflowFromContext(ctx context.Context) string {
	return labelFromContext(ctx, workflowKey{})
}

func ProviderFromContext(ctx context.Context) string {
	return labelFromContext(ctx, providerKey{})
}

func labelFromContext(ctx context.Context, key any) string {
	if ctx == nil {
		return "unknown"
	}
	if s, ok := ctx.Value(key).(string); ok {
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	return "unknown"
}
