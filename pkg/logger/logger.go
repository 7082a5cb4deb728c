// Package logger 基于 log/slog 的结构化日志，自动携带请求与链路标识
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ContextKey context 中日志字段的键类型
type ContextKey string

const (
	TraceIDKey   ContextKey = "trace_id"
	SpanIDKey    ContextKey = "span_id"
	RequestIDKey ContextKey = "request_id"
)

// contextKeys FromContext 按序提取的字段
var contextKeys = []ContextKey{TraceIDKey, SpanIDKey, RequestIDKey}

// levelNames 配置里允许的日志级别写法
var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

var defaultLogger *slog.Logger

// Init 初始化全局日志器，format 支持 json/text
func Init(level string, format string) {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	handler := slog.Handler(slog.NewTextHandler(os.Stdout, opts))
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(level string) slog.Level {
	if lv, ok := levelNames[strings.ToLower(level)]; ok {
		return lv
	}
	return slog.LevelInfo
}

// Default 返回全局日志器，未初始化时按 info/json 兜底
func Default() *slog.Logger {
	if defaultLogger == nil {
		Init("info", "json")
	}
	return defaultLogger
}

// FromContext 取出 context 中已注入的标识字段，返回带字段的日志器
func FromContext(ctx context.Context) *slog.Logger {
	logger := Default()
	for _, key := range contextKeys {
		if v := ctx.Value(key); v != nil {
			logger = logger.With(string(key), v)
		}
	}
	return logger
}

// WithContext 把日志字段注入 context，中间件在请求入口调用
func WithContext(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...any) {
	logger := FromContext(ctx)
	if err != nil {
		logger = logger.With("error", err.Error())
	}
	logger.Error(msg, args...)
}

// Fatal 记录错误后退出进程，仅进程启动阶段使用
func Fatal(ctx context.Context, msg string, err error, args ...any) {
	Error(ctx, msg, err, args...)
	os.Exit(1)
}
