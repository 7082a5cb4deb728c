package chain

import (
	"context"
	"fmt"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "deskmate-ai-api/internal/domain/service"
	wfmodel "deskmate-ai-api/internal/workflow/model"
	wfnode "deskmate-ai-api/internal/workflow/node"
	workflowport "deskmate-ai-api/internal/workflow/port"
	workflowprompt "deskmate-ai-api/internal/workflow/prompt"
	"deskmate-ai-api/pkg/logger"
)

// HybridCombineChain 两段式混合应答的第二段：合并摘要与文档证据
type HybridCombineChain struct {
	factory workflowport.ChatModelFactory
}

func NewHybridCombineChain(factory workflowport.ChatModelFactory) *HybridCombineChain {
	return &HybridCombineChain{factory: factory}
}

func (c *HybridCombineChain) Invoke(ctx context.Context, in *wfmodel.HybridCombineInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "hybrid_combine", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatHybridCombineMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildHybridCombineModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"workflow", "hybrid_combine",
			"provider", strings.TrimSpace(in.Provider),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildHybridCombineModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatHybridCombineMessages(ctx context.Context, in *wfmodel.HybridCombineInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptHybridCombineV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"question":    strings.TrimSpace(in.Question),
		"db_summary":  in.DBSummary,
		"doc_context": in.DocContext,
	}
	return tpl.Format(ctx, vars)
}

func buildHybridCombineModelOptions(in *wfmodel.HybridCombineInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}
	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "hybrid_combined_answer",
					"strict": false,
					"schema": hybridCombineJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func hybridCombineJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"speech", "doc_notes", "answer"},
		"properties": map[string]any{
			"type":      map[string]any{"type": "string"},
			"speech":    map[string]any{"type": "string"},
			"doc_notes": map[string]any{"type": "string"},
			"answer":    map[string]any{"type": "string"},
		},
	}
}
