package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "deskmate-ai-api/internal/domain/service"
	wfmodel "deskmate-ai-api/internal/workflow/model"
	wfnode "deskmate-ai-api/internal/workflow/node"
	workflowport "deskmate-ai-api/internal/workflow/port"
	workflowprompt "deskmate-ai-api/internal/workflow/prompt"
	"deskmate-ai-api/pkg/logger"
)

// HybridOneCallChain 单次调用生成 DB 行 + 文档证据融合应答
type HybridOneCallChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.HybridOneCallInput, *schema.Message]
	chainErr  error
}

func NewHybridOneCallChain(factory workflowport.ChatModelFactory) *HybridOneCallChain {
	return &HybridOneCallChain{factory: factory}
}

func (c *HybridOneCallChain) Invoke(ctx context.Context, in *wfmodel.HybridOneCallInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type hybridOneCallChainState struct {
	In       *wfmodel.HybridOneCallInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *HybridOneCallChain) getChain() (compose.Runnable[*wfmodel.HybridOneCallInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *HybridOneCallChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.HybridOneCallInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.HybridOneCallInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.HybridOneCallInput) (*hybridOneCallChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &hybridOneCallChainState{In: in}, nil
		}),
		compose.WithNodeName("hybrid_onecall.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *hybridOneCallChainState) (*hybridOneCallChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatHybridOneCallMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("hybrid_onecall.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *hybridOneCallChainState) (*hybridOneCallChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "hybrid_onecall", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildHybridOneCallModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"workflow", "hybrid_onecall",
					"provider", strings.TrimSpace(st.In.Provider),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildHybridOneCallModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("hybrid_onecall.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *hybridOneCallChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("hybrid_onecall.finalize"),
	)

	return chain.Compile(ctx)
}

func formatHybridOneCallMessages(ctx context.Context, in *wfmodel.HybridOneCallInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptHybridOneCallV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"question":    strings.TrimSpace(in.Question),
		"query":       strings.TrimSpace(in.Query),
		"params":      in.ParamsJSON,
		"rows_json":   in.RowsJSON,
		"doc_context": in.DocContext,
	}
	return tpl.Format(ctx, vars)
}

func buildHybridOneCallModelOptions(in *wfmodel.HybridOneCallInput, enableSchema bool) []model.Option {
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
					"name":   "hybrid_answer",
					"strict": false,
					"schema": hybridOneCallJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func hybridOneCallJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"speech", "db_summary", "doc_notes", "answer"},
		"properties": map[string]any{
			"type":       map[string]any{"type": "string"},
			"speech":     map[string]any{"type": "string"},
			"db_summary": map[string]any{"type": "string"},
			"doc_notes":  map[string]any{"type": "string"},
			"answer":     map[string]any{"type": "string"},
		},
	}
}
