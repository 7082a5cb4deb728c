// Package postgres 业务库访问层
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deskmate-ai-api/internal/domain/entity"
	"deskmate-ai-api/internal/domain/repository"
	"deskmate-ai-api/pkg/metrics"
)

// Executor 只读 SQL 执行器
// 执行上游已通过 SELECT 闸门的查询。生成的 SQL 使用 :name 形式的
// 命名参数，执行前统一改写为 GORM 的 @name 绑定。
type Executor struct {
	client *Client
}

func NewExecutor(client *Client) *Executor {
	return &Executor{client: client}
}

var _ repository.QueryExecutor = (*Executor)(nil)

// SelectRows 执行查询并返回保留列序的结果集
func (e *Executor) SelectRows(ctx context.Context, query string, params map[string]any) (*entity.RowSet, error) {
	if e == nil || e.client == nil {
		return nil, fmt.Errorf("postgres client not configured")
	}
	ctx, span := tracer.Start(ctx, "postgres.SelectRows",
		trace.WithAttributes(attribute.Int("param_count", len(params))))
	defer span.End()

	rewritten := rewriteNamedParams(query)

	start := time.Now()
	db := e.client.db.WithContext(ctx)
	var tx = db.Raw(rewritten)
	if len(params) > 0 {
		tx = db.Raw(rewritten, params)
	}

	rows, err := tx.Rows()
	if err != nil {
		metrics.SQLExecuteTotal.WithLabelValues("error").Inc()
		metrics.SQLExecuteDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		metrics.SQLExecuteTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := &entity.RowSet{
		Columns: cols,
		Rows:    make([]map[string]any, 0, 16),
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for rows.Next() {
		for i := range values {
			values[i] = nil
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			metrics.SQLExecuteTotal.WithLabelValues("error").Inc()
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(values[i])
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		metrics.SQLExecuteTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	metrics.SQLExecuteTotal.WithLabelValues("ok").Inc()
	metrics.SQLExecuteDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("row_count", out.Len()))
	return out, nil
}

// normalizeValue 把驱动返回值折叠为可序列化的基础类型
// 时间统一格式化为 "2006-01-02 15:04:05"，字节串转为字符串。
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}

// rewriteNamedParams 把 :name 占位符改写为 @name
// 跳过字符串字面量内部，`::` 类型转换原样保留。
func rewriteNamedParams(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	runes := []rune(query)
	inSingle := false
	inDouble := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteRune(ch)
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteRune(ch)
		case ch == ':' && !inSingle && !inDouble:
			if i+1 < len(runes) && runes[i+1] == ':' {
				b.WriteString("::")
				i++
				continue
			}
			if i+1 < len(runes) && isIdentStart(runes[i+1]) {
				b.WriteRune('@')
				continue
			}
			b.WriteRune(ch)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
