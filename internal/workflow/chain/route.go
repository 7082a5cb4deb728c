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

var defaultPromptRegistry = workflowprompt.NewRegistry()

// DBRouteChain 判定问题是否需要查询关系库
type DBRouteChain struct {
	factory workflowport.ChatModelFactory
}

func NewDBRouteChain(factory workflowport.ChatModelFactory) *DBRouteChain {
	return &DBRouteChain{factory: factory}
}

func (c *DBRouteChain) Invoke(ctx context.Context, in *wfmodel.DBRouteInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "db_route", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatDBRouteMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildDBRouteModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"workflow", "db_route",
			"provider", strings.TrimSpace(in.Provider),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildDBRouteModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatDBRouteMessages(ctx context.Context, in *wfmodel.DBRouteInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptDBRouteV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"question": strings.TrimSpace(in.Question),
	}
	return tpl.Format(ctx, vars)
}

func buildDBRouteModelOptions(in *wfmodel.DBRouteInput, enableSchema bool) []model.Option {
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
					"name":   "db_route_decision",
					"strict": false,
					"schema": dbRouteJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func dbRouteJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"is_db_question"},
		"properties": map[string]any{
			"is_db_question": map[string]any{"type": "boolean"},
			"reason":         map[string]any{"type": "string"},
		},
	}
}
