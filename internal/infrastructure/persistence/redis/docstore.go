// Package redis 提供 Redis 缓存和消息队列实现
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deskmate-ai-api/internal/domain/entity"
	"deskmate-ai-api/internal/domain/repository"
)

var docstoreTracer = otel.Tracer("redis.docstore")

// docKeyPrefix 父文档键前缀
const docKeyPrefix = "docstore:"

// DocStore Redis 父文档存储
// 每个父文档存为一个 JSON 字符串键，批量操作走 MGET / pipeline。
type DocStore struct {
	client *Client
}

func NewDocStore(client *Client) *DocStore {
	return &DocStore{client: client}
}

var _ repository.DocumentStore = (*DocStore)(nil)

func docKey(id string) string {
	return docKeyPrefix + id
}

// BatchGet 批量获取父文档，返回与 ids 等长的切片，缺失位置为 nil
func (s *DocStore) BatchGet(ctx context.Context, ids []string) ([]*entity.ParentDocument, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("redis client not configured")
	}
	ctx, span := docstoreTracer.Start(ctx, "docstore.BatchGet",
		trace.WithAttributes(attribute.Int("count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return []*entity.ParentDocument{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}

	vals, err := s.client.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to mget documents: %w", err)
	}

	docs := make([]*entity.ParentDocument, len(ids))
	for i, v := range vals {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var doc entity.ParentDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to unmarshal document %s: %w", ids[i], err)
		}
		doc.ID = ids[i]
		docs[i] = &doc
	}
	return docs, nil
}

// BatchPut 批量写入父文档，单个 pipeline 往返
func (s *DocStore) BatchPut(ctx context.Context, docs []*entity.ParentDocument) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	ctx, span := docstoreTracer.Start(ctx, "docstore.BatchPut",
		trace.WithAttributes(attribute.Int("count", len(docs))))
	defer span.End()

	if len(docs) == 0 {
		return nil
	}

	pipe := s.client.rdb.Pipeline()
	for _, doc := range docs {
		if doc == nil || strings.TrimSpace(doc.ID) == "" {
			continue
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}
		pipe.Set(ctx, docKey(doc.ID), payload, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to put documents: %w", err)
	}
	return nil
}

// BatchDelete 批量删除父文档
func (s *DocStore) BatchDelete(ctx context.Context, ids []string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	ctx, span := docstoreTracer.Start(ctx, "docstore.BatchDelete",
		trace.WithAttributes(attribute.Int("count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		keys = append(keys, docKey(id))
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.rdb.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// ListKeys 列出全部父文档 ID
// 用 SCAN 游标遍历，避免在大键空间上执行 KEYS。
func (s *DocStore) ListKeys(ctx context.Context) ([]string, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("redis client not configured")
	}
	ctx, span := docstoreTracer.Start(ctx, "docstore.ListKeys")
	defer span.End()

	var (
		cursor uint64
		ids    []string
	)
	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, docKeyPrefix+"*", 256).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan document keys: %w", err)
		}
		for _, k := range keys {
			ids = append(ids, strings.TrimPrefix(k, docKeyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	span.SetAttributes(attribute.Int("count", len(ids)))
	return ids, nil
}
