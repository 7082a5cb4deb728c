//go:build wireinject
// +build wireinject

// Package wire 集中声明依赖装配，初始化代码由 wire 生成
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	"deskmate-ai-api/internal/application/answer"
	"deskmate-ai-api/internal/application/command"
	"deskmate-ai-api/internal/application/relational"
	"deskmate-ai-api/internal/application/retrieval"
	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/domain/repository"
	infraembedding "deskmate-ai-api/internal/infrastructure/embedding"
	"deskmate-ai-api/internal/infrastructure/llm"
	"deskmate-ai-api/internal/infrastructure/persistence/milvus"
	"deskmate-ai-api/internal/infrastructure/persistence/postgres"
	"deskmate-ai-api/internal/infrastructure/persistence/redis"
	"deskmate-ai-api/internal/infrastructure/rerank"
	"deskmate-ai-api/internal/interfaces/http/handler"
	"deskmate-ai-api/internal/interfaces/http/middleware"
	"deskmate-ai-api/internal/interfaces/http/router"
	workflowport "deskmate-ai-api/internal/workflow/port"
	"deskmate-ai-api/pkg/logger"
)

// InitializeApp 装配对外服务的完整依赖图
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		VectorSet,
		EmbeddingSet,
		RetrievalSet,
		RelationalSet,
		AnswerSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeVectorBootstrap 初始化向量库引导依赖（集合与索引创建）
func InitializeVectorBootstrap(ctx context.Context, cfg *config.Config) (*milvus.Repository, func(), error) {
	wire.Build(
		ProvideMilvusClient,
		ProvideMilvusRepository,
	)
	return nil, nil, nil
}

// PostgresSet Postgres 连接与查询侧实现
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewExecutor,
	ProvideIntrospector,
	wire.Bind(new(repository.QueryExecutor), new(*postgres.Executor)),
	wire.Bind(new(repository.SchemaIntrospector), new(*postgres.Introspector)),
)

// RedisSet Redis 连接及其上的文档库与限流器
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewDocStore,
	redis.NewRateLimiter,
	wire.Bind(new(repository.DocumentStore), new(*redis.DocStore)),
)

// VectorSet 可选 Milvus（不可达时禁用向量检索/索引，不阻塞启动）
var VectorSet = wire.NewSet(
	ProvideMilvusClientOptional,
	ProvideMilvusRepositoryOptional,
	ProvideChunkIndexOptional,
)

// EmbeddingSet Embedder 允许缺席，缺席时向量链路整体降级
var EmbeddingSet = wire.NewSet(
	ProvideEmbedderOptional,
)

// RetrievalSet 两级检索引擎与索引器
var RetrievalSet = wire.NewSet(
	ProvideReranker,
	ProvideRetrievalEngine,
	ProvideRetrievalIndexer,
	wire.Bind(new(answer.Retriever), new(*retrieval.Engine)),
)

// RelationalSet 数据库 Schema 上下文提供者
var RelationalSet = wire.NewSet(
	ProvideSchemaProvider,
	wire.Bind(new(answer.SchemaContextProvider), new(*relational.SchemaProvider)),
)

// AnswerSet 问答编排与命令闸门
var AnswerSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	answer.NewChains,
	command.NewRegistry,
	wire.Bind(new(answer.CommandGate), new(*command.Registry)),
	answer.NewService,
)

// RouterSet HTTP 处理器与路由装配
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewAssistantHandler,
	handler.NewDocumentHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRateLimitMiddleware,
	router.New,
)

// ProvidePostgresClient 建立 Postgres 连接，cleanup 负责关闭
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideIntrospector 提供 Schema 自省器
func ProvideIntrospector(cfg *config.Config, client *postgres.Client) *postgres.Introspector {
	return postgres.NewIntrospector(client, &cfg.Database.Postgres)
}

// ProvideRedisClient 建立 Redis 连接，cleanup 负责关闭
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideMilvusClient 提供 Milvus 客户端（必需，失败即报错）
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideMilvusRepository 提供向量仓储（必需）
func ProvideMilvusRepository(cfg *config.Config, client *milvus.Client) *milvus.Repository {
	return milvus.NewRepository(client, vectorDimension(cfg))
}

// ProvideMilvusClientOptional 提供可选 Milvus 客户端
func ProvideMilvusClientOptional(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Warn(ctx, "milvus unreachable, vector features disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideMilvusRepositoryOptional 提供可选向量仓储
func ProvideMilvusRepositoryOptional(cfg *config.Config, client *milvus.Client) *milvus.Repository {
	if client == nil {
		return nil
	}
	return milvus.NewRepository(client, vectorDimension(cfg))
}

// ProvideChunkIndexOptional 提供可选子块索引 port
func ProvideChunkIndexOptional(repo *milvus.Repository) retrieval.ChunkIndex {
	if repo == nil {
		return nil
	}
	return milvus.NewChunkIndexAdapter(repo)
}

// ProvideEmbedderOptional 提供可选 Embedder
func ProvideEmbedderOptional(ctx context.Context, cfg *config.Config) (einoembedding.Embedder, error) {
	embedder, err := infraembedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Warn(ctx, "embedder init failed, vector features disabled", "error", err.Error())
		return nil, nil
	}
	return embedder, nil
}

// ProvideReranker 提供重排序客户端（endpoint 为空时保持向量顺序）
func ProvideReranker(cfg *config.Config) retrieval.Reranker {
	return rerank.NewClient(&cfg.Rerank)
}

// ProvideRetrievalEngine 提供两级检索引擎
func ProvideRetrievalEngine(cfg *config.Config, embedder einoembedding.Embedder, chunkIndex retrieval.ChunkIndex, docStore repository.DocumentStore, reranker retrieval.Reranker) *retrieval.Engine {
	return retrieval.NewEngine(
		embedder,
		chunkIndex,
		docStore,
		reranker,
		cfg.Retrieval.InitialK,
		cfg.Retrieval.TopK,
		cfg.Retrieval.OCRDomain,
	)
}

// ProvideRetrievalIndexer 提供文档索引器
func ProvideRetrievalIndexer(cfg *config.Config, embedder einoembedding.Embedder, chunkIndex retrieval.ChunkIndex, docStore repository.DocumentStore) *retrieval.Indexer {
	return retrieval.NewIndexer(embedder, chunkIndex, docStore, cfg.Embedding.BatchSize)
}

// ProvideSchemaProvider 提供 Schema 上下文缓存
func ProvideSchemaProvider(cfg *config.Config, introspector repository.SchemaIntrospector) *relational.SchemaProvider {
	return relational.NewSchemaProvider(introspector, cfg.Relational.SchemaCacheTTL)
}

// ProvideRateLimitMiddleware 提供限流中间件
func ProvideRateLimitMiddleware(cfg *config.Config, limiter *redis.RateLimiter) gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
	}, limiter)
}

// vectorDimension 向量维度取 Embedding 配置，未设置时用集合默认维度
func vectorDimension(cfg *config.Config) int {
	if cfg != nil && cfg.Embedding.Dimension > 0 {
		return cfg.Embedding.Dimension
	}
	return milvus.DefaultVectorDimension
}
