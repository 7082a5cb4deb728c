package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deskmate-ai-api/pkg/metrics"
)

// Repository 子块向量仓储，所有读写都落在 doc_chunks 集合
type Repository struct {
	client *Client
	dim    int
}

// NewRepository 创建子块向量仓储，dim 为向量维度
func NewRepository(client *Client, dim int) *Repository {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	return &Repository{client: client, dim: dim}
}

// ChunkQuery 子块检索参数
type ChunkQuery struct {
	QueryVector []float32
	TopK        int
	// Domain 非空时只检索该领域标签的子块
	Domain string
}

// ChunkResult 子块检索结果，Score 为距离
type ChunkResult struct {
	ID      string
	DocID   string
	Source  string
	Domain  string
	Content string
	Score   float32
}

// ChunkRecord 待写入的子块
type ChunkRecord struct {
	ID      string
	DocID   string
	Source  string
	Domain  string
	Content string
	Vector  []float32
}

// conn 返回底层 SDK 连接，向量库未配置时报错
func (r *Repository) conn() (client.Client, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	return r.client.milvus, nil
}

// metricType 距离度量，与两级检索的"距离越小越相关"口径保持一致
func (r *Repository) metricType() entity.MetricType {
	switch strings.ToUpper(strings.TrimSpace(r.client.config.MetricType)) {
	case "IP":
		return entity.IP
	case "COSINE":
		return entity.COSINE
	default:
		return entity.L2
	}
}

// SearchChunks 子块向量检索。
// Domain 非空时附加领域过滤表达式，命中按距离升序返回。
func (r *Repository) SearchChunks(ctx context.Context, query *ChunkQuery) ([]*ChunkResult, error) {
	mc, err := r.conn()
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchChunks",
		trace.WithAttributes(
			attribute.Int("top_k", query.TopK),
			attribute.String("domain", query.Domain),
		))
	defer span.End()

	filter := ""
	if d := strings.TrimSpace(query.Domain); d != "" {
		filter = fmt.Sprintf(`domain == "%s"`, d)
	}

	searchEf := r.client.config.SearchEf
	if searchEf <= 0 {
		searchEf = 128
	}
	sp, err := entity.NewIndexHNSWSearchParam(searchEf)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build hnsw search param: %w", err)
	}

	collName := r.client.CollectionName(CollectionDocChunks)
	start := time.Now()
	results, err := mc.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "doc_id", "source", "domain", "content"},
		[]entity.Vector{entity.FloatVector(query.QueryVector)},
		"vector",
		r.metricType(),
		query.TopK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionDocChunks).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MilvusSearchTotal.WithLabelValues(CollectionDocChunks, "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("search %s: %w", collName, err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionDocChunks, "ok").Inc()

	var hits []*ChunkResult
	for _, rs := range results {
		stringCol := func(name string) []string {
			if vc, ok := rs.Fields.GetColumn(name).(*entity.ColumnVarChar); ok {
				return vc.Data()
			}
			return nil
		}
		var (
			ids      = stringCol("id")
			docIDs   = stringCol("doc_id")
			sources  = stringCol("source")
			domains  = stringCol("domain")
			contents = stringCol("content")
		)
		for i := 0; i < rs.ResultCount; i++ {
			hit := &ChunkResult{Score: rs.Scores[i]}
			if i < len(ids) {
				hit.ID = ids[i]
			}
			if i < len(docIDs) {
				hit.DocID = docIDs[i]
			}
			if i < len(sources) {
				hit.Source = sources[i]
			}
			if i < len(domains) {
				hit.Domain = domains[i]
			}
			if i < len(contents) {
				hit.Content = contents[i]
			}
			hits = append(hits, hit)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(hits)))
	return hits, nil
}

// InsertChunks 批量写入子块
func (r *Repository) InsertChunks(ctx context.Context, records []*ChunkRecord) error {
	mc, err := r.conn()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertChunks",
		trace.WithAttributes(attribute.Int("count", len(records))))
	defer span.End()

	var (
		ids      = make([]string, len(records))
		vectors  = make([][]float32, len(records))
		docIDs   = make([]string, len(records))
		sources  = make([]string, len(records))
		domains  = make([]string, len(records))
		contents = make([]string, len(records))
	)
	for i, rec := range records {
		ids[i] = rec.ID
		vectors[i] = rec.Vector
		docIDs[i] = rec.DocID
		sources[i] = rec.Source
		domains[i] = rec.Domain
		contents[i] = rec.Content
	}

	cols := []entity.Column{
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnFloatVector("vector", r.dim, vectors),
		entity.NewColumnVarChar("doc_id", docIDs),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnVarChar("domain", domains),
		entity.NewColumnVarChar("content", contents),
	}
	collName := r.client.CollectionName(CollectionDocChunks)
	if _, err := mc.Insert(ctx, collName, "", cols...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// DeleteByDocID 删除某父文档下的全部子块
func (r *Repository) DeleteByDocID(ctx context.Context, docID string) error {
	mc, err := r.conn()
	if err != nil {
		return err
	}
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteByDocID",
		trace.WithAttributes(attribute.String("doc_id", docID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionDocChunks)
	filter := fmt.Sprintf(`doc_id == "%s"`, docID)
	if err := mc.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// EnsureDocChunksCollection 确保 doc_chunks 集合与 HNSW 索引可用（不存在则创建）。
// 约束：只做增量创建，不做 drop 等破坏性操作。
func (r *Repository) EnsureDocChunksCollection(ctx context.Context) error {
	if _, err := r.conn(); err != nil {
		return err
	}

	exists, err := r.client.HasCollection(ctx, CollectionDocChunks)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.createCollection(ctx, DocChunksSchema(r.dim)); err != nil {
			return err
		}
		if err := r.createIndex(ctx, CollectionDocChunks); err != nil {
			return err
		}
	}

	// 集合已加载时 LoadCollection 直接返回成功
	return r.client.LoadCollection(ctx, CollectionDocChunks)
}

func (r *Repository) createCollection(ctx context.Context, schema *entity.Schema) error {
	mc, err := r.conn()
	if err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	schema.CollectionName = r.client.CollectionName(schema.CollectionName)
	if err := mc.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (r *Repository) createIndex(ctx context.Context, collection string) error {
	mc, err := r.conn()
	if err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	idx, err := entity.NewIndexHNSW(
		r.metricType(),
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := mc.CreateIndex(ctx, r.client.CollectionName(collection), "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}
