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

// IntentChain 对规则无法判定的输入做 LLM 意图分类
type IntentChain struct {
	factory workflowport.ChatModelFactory
}

func NewIntentChain(factory workflowport.ChatModelFactory) *IntentChain {
	return &IntentChain{factory: factory}
}

func (c *IntentChain) Invoke(ctx context.Context, in *wfmodel.IntentInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "intent_classify", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatIntentMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildIntentModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"workflow", "intent_classify",
			"provider", strings.TrimSpace(in.Provider),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildIntentModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatIntentMessages(ctx context.Context, in *wfmodel.IntentInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptIntentV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"question": strings.TrimSpace(in.Question),
	}
	return tpl.Format(ctx, vars)
}

func buildIntentModelOptions(in *wfmodel.IntentInput, enableSchema bool) []model.Option {
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
					"name":   "intent_decision",
					"strict": false,
					"schema": intentJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func intentJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"intent"},
		"properties": map[string]any{
			"intent": map[string]any{"type": "string", "enum": []any{"command", "explain"}},
			"reason": map[string]any{"type": "string"},
		},
	}
}
