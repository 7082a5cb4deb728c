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

// SQLQueryChain 根据问题和库表结构生成 SELECT 查询计划
type SQLQueryChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.SQLQueryInput, *schema.Message]
	chainErr  error
}

func NewSQLQueryChain(factory workflowport.ChatModelFactory) *SQLQueryChain {
	return &SQLQueryChain{factory: factory}
}

func (c *SQLQueryChain) Invoke(ctx context.Context, in *wfmodel.SQLQueryInput) (*schema.Message, error) {
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

type sqlQueryChainState struct {
	In       *wfmodel.SQLQueryInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *SQLQueryChain) getChain() (compose.Runnable[*wfmodel.SQLQueryInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *SQLQueryChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.SQLQueryInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.SQLQueryInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.SQLQueryInput) (*sqlQueryChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &sqlQueryChainState{In: in}, nil
		}),
		compose.WithNodeName("sql_query.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *sqlQueryChainState) (*sqlQueryChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatSQLQueryMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("sql_query.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *sqlQueryChainState) (*sqlQueryChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "sql_query_generate", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.ChatModel(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildSQLQueryModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"workflow", "sql_query_generate",
					"provider", strings.TrimSpace(st.In.Provider),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildSQLQueryModelOptions(st.In, false)...)
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
		compose.WithNodeName("sql_query.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *sqlQueryChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("sql_query.finalize"),
	)

	return chain.Compile(ctx)
}

func formatSQLQueryMessages(ctx context.Context, in *wfmodel.SQLQueryInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptSQLQueryV1)
	if err != nil {
		return nil, err
	}
	maxLimit := in.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 50
	}
	vars := map[string]any{
		"question":       strings.TrimSpace(in.Question),
		"schema_context": strings.TrimSpace(in.SchemaContext),
		"max_limit":      maxLimit,
	}
	return tpl.Format(ctx, vars)
}

func buildSQLQueryModelOptions(in *wfmodel.SQLQueryInput, enableSchema bool) []model.Option {
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
					"name":   "sql_query_plan",
					"strict": false,
					"schema": sqlQueryJSONSchema(),
				},
			},
		}))
	}
	return opts
}

func sqlQueryJSONSchema() map[string]any {
	// 说明：schema 以“最小可用”为目标，params 故意放开为自由对象。
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"speech", "sql"},
		"properties": map[string]any{
			"speech": map[string]any{"type": "string"},
			"sql":    map[string]any{"type": "string"},
			"params": map[string]any{
				"type":                 "object",
				"additionalProperties": true,
				"properties": map[string]any{
					"limit": map[string]any{"type": "integer"},
				},
			},
		},
	}
}
