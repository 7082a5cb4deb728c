// Package callback 提供 Eino 工作流的观测回调
package callback

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	llmctx "deskmate-ai-api/internal/domain/service"
	"deskmate-ai-api/pkg/metrics"
)

type startTimeKey struct{}

// modelObserver 把每次模型生成折算成指标与追踪 span。
// workflow 标签来自链路入口写入的 Context（见 domain/service 的 llm context）。
type modelObserver struct {
	tracer trace.Tracer
}

func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	obs := &modelObserver{tracer: otel.Tracer("eino")}
	return &cbtemplate.ModelCallbackHandler{
		OnStart: obs.onStart,
		OnEnd:   obs.onEnd,
		OnError: obs.onError,
	}
}

func (o *modelObserver) onStart(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
	ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

	modelName := ""
	if input != nil && input.Config != nil {
		modelName = input.Config.Model
	}
	attrs := []attribute.KeyValue{
		attribute.String("eino.workflow", llmctx.WorkflowFromContext(ctx)),
		attribute.String("llm.provider", llmctx.ProviderFromContext(ctx)),
		attribute.String("llm.model", modelName),
	}
	if info != nil {
		attrs = append(attrs,
			attribute.String("eino.node_name", info.Name),
			attribute.String("eino.type", info.Type),
		)
	}

	ctx, _ = o.tracer.Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
	return ctx
}

func (o *modelObserver) onEnd(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
	workflow := llmctx.WorkflowFromContext(ctx)
	modelName := ""
	if output != nil && output.Config != nil {
		modelName = output.Config.Model
	}
	o.record(ctx, workflow, modelName, "success")

	span := trace.SpanFromContext(ctx)
	if output != nil && output.TokenUsage != nil {
		usage := output.TokenUsage
		metrics.LLMTokensUsed.WithLabelValues(workflow, modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(workflow, modelName, "completion").Add(float64(usage.CompletionTokens))
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
	}
	span.End()
	return ctx
}

func (o *modelObserver) onError(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
	modelName := ""
	if info != nil {
		modelName = info.Type
	}
	o.record(ctx, llmctx.WorkflowFromContext(ctx), modelName, "error")

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
	return ctx
}

// record 上报一次模型调用的计数与耗时
func (o *modelObserver) record(ctx context.Context, workflow, modelName, status string) {
	metrics.LLMCallTotal.WithLabelValues(workflow, modelName, status).Inc()
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.LLMCallDuration.WithLabelValues(workflow, modelName).Observe(d)
	}
}

func elapsedSeconds(ctx context.Context) float64 {
	if start, ok := ctx.Value(startTimeKey{}).(time.Time); ok && !start.IsZero() {
		return time.Since(start).Seconds()
	}
	return 0
}
