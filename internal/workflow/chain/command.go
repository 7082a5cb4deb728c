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

// CommandChain 从请求和文档上下文生成白名单命令方案
type CommandChain struct {
	factory workflowport.ChatModelFactory
}

func NewCommandChain(factory workflowport.ChatModelFactory) *CommandChain {
	return &CommandChain{factory: factory}
}

func (c *CommandChain) Invoke(ctx context.Context, in *wfmodel.CommandInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "command_generate", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatCommandMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildCommandModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"workflow", "command_generate",
			"provider", strings.TrimSpace(in.Provider),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildCommandModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatCommandMessages(ctx context.Context, in *wfmodel.CommandInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptCommandGenV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"context":  in.Context,
		"question": strings.TrimSpace(in.Question),
	}
	return tpl.Format(ctx, vars)
}

func buildCommandModelOptions(in *wfmodel.CommandInput, enableSchema bool) []model.Option {
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
					"name":   "command_plan",
					"strict": false,
					"schema": commandJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func commandJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"speech"},
		"properties": map[string]any{
			"type":   map[string]any{"type": "string"},
			"speech": map[string]any{"type": "string"},
			"actions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"name"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"args": map[string]any{
							"type":                 "object",
							"additionalProperties": true,
							"properties": map[string]any{
								"url": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	}
}
