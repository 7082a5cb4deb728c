// Package metrics 定义服务的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "deskmate"

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 6)

// HTTP 层指标
var (
	HTTPRequestsTotal   = counter("http", "requests_total", "Total number of HTTP requests", "method", "path", "status")
	HTTPRequestDuration = histogram("http", "request_duration_seconds", "HTTP request duration in seconds", prometheus.DefBuckets, "method", "path")
	HTTPRequestSize     = histogram("http", "request_size_bytes", "HTTP request size in bytes", sizeBuckets, "method", "path")
	HTTPResponseSize    = histogram("http", "response_size_bytes", "HTTP response size in bytes", sizeBuckets, "method", "path")
)

// 回答编排指标
var (
	AnswerRequestsTotal = counter("answer", "requests_total", "Total number of answer requests", "operation", "type")
	GuardDecisionTotal  = counter("answer", "guard_decision_total", "Guard decisions by reason", "operation", "reason")
	FallbackTierTotal   = counter("answer", "fallback_tier_total", "Answer fallback depth reached, by terminal guard reason", "reason")
)

// LLM 调用指标，workflow 标签由链路入口打点
var (
	// LLMTokensUsed 的 type 取 prompt/completion
	LLMTokensUsed   = counter("llm", "tokens_used_total", "Total tokens used for LLM calls", "workflow", "model", "type")
	LLMCallDuration = histogram("llm", "call_duration_seconds", "LLM call duration in seconds", []float64{1, 5, 10, 30, 60, 120}, "workflow", "model")
	LLMCallTotal    = counter("llm", "call_total", "Total number of LLM calls", "workflow", "model", "status")
)

// 向量检索与重排指标
var (
	MilvusSearchDuration = histogram("milvus", "search_duration_seconds", "Milvus search duration in seconds", []float64{.01, .05, .1, .25, .5, 1}, "collection")
	MilvusSearchTotal    = counter("milvus", "search_total", "Total number of Milvus searches", "collection", "status")
	RerankDuration       = histogram("rerank", "duration_seconds", "Rerank call duration in seconds", []float64{.01, .05, .1, .25, .5, 1, 2.5}, "status")
)

// 生成 SQL 执行指标
var (
	SQLExecuteTotal    = counter("relational", "execute_total", "Total number of generated SQL executions", "status")
	SQLExecuteDuration = histogram("relational", "execute_duration_seconds", "Generated SQL execution duration in seconds", []float64{.005, .01, .05, .1, .5, 1, 5}, "status")
)
