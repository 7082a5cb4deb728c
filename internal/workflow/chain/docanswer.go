package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "deskmate-ai-api/internal/domain/service"
	wfmodel "deskmate-ai-api/internal/workflow/model"
	workflowport "deskmate-ai-api/internal/workflow/port"
	workflowprompt "deskmate-ai-api/internal/workflow/prompt"
)

// DocAnswerChain 基于文档上下文生成自由文本回答
// 输出是带 (DOC N) 引用标记的纯文本，不走 JSON 解析。
type DocAnswerChain struct {
	factory workflowport.ChatModelFactory
}

func NewDocAnswerChain(factory workflowport.ChatModelFactory) *DocAnswerChain {
	return &DocAnswerChain{factory: factory}
}

func (c *DocAnswerChain) Invoke(ctx context.Context, in *wfmodel.DocAnswerInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "doc_answer_generate", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatDocAnswerMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildDocAnswerModelOptions(in)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func formatDocAnswerMessages(ctx context.Context, in *wfmodel.DocAnswerInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptDocAnswerV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"context":  in.Context,
		"question": strings.TrimSpace(in.Question),
	}
	return tpl.Format(ctx, vars)
}

func buildDocAnswerModelOptions(in *wfmodel.DocAnswerInput) []model.Option {
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
	return opts
}
