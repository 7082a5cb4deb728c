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

// DBSummaryChain 把查询结果行转成可读摘要文本
type DBSummaryChain struct {
	factory workflowport.ChatModelFactory
}

func NewDBSummaryChain(factory workflowport.ChatModelFactory) *DBSummaryChain {
	return &DBSummaryChain{factory: factory}
}

func (c *DBSummaryChain) Invoke(ctx context.Context, in *wfmodel.DBSummaryInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "db_summary", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatDBSummaryMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildDBSummaryModelOptions(in, true)...)
	if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"workflow", "db_summary",
			"provider", strings.TrimSpace(in.Provider),
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildDBSummaryModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatDBSummaryMessages(ctx context.Context, in *wfmodel.DBSummaryInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptDBSummaryV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"question":  strings.TrimSpace(in.Question),
		"query":     strings.TrimSpace(in.Query),
		"params":    in.ParamsJSON,
		"rows_json": in.RowsJSON,
	}
	return tpl.Format(ctx, vars)
}

func buildDBSummaryModelOptions(in *wfmodel.DBSummaryInput, enableSchema bool) []model.Option {
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
					"name":   "db_summary",
					"strict": false,
					"schema": dbSummaryJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func dbSummaryJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"summary"},
		"properties": map[string]any{
			"type":    map[string]any{"type": "string"},
			"summary": map[string]any{"type": "string"},
			"speech":  map[string]any{"type": "string"},
		},
	}
}
