// Package milvus 文档子块向量索引的存取实现
package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deskmate-ai-api/internal/config"
)

var tracer = otel.Tracer("milvus")

// collSpan 统一带集合名属性的 span 开头
func collSpan(ctx context.Context, op, collection string) (context.Context, trace.Span) {
	return tracer.Start(ctx, op,
		trace.WithAttributes(attribute.String("collection", collection)))
}

// Client 包装 SDK 连接，集合名统一加配置前缀
type Client struct {
	milvus client.Client
	config *config.MilvusConfig
}

func NewClient(ctx context.Context, cfg *config.MilvusConfig) (*Client, error) {
	conf := client.Config{
		Address: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
	if cfg.User != "" && cfg.Password != "" {
		conf.Username = cfg.User
		conf.Password = cfg.Password
	}

	milvusClient, err := client.NewClient(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("connect milvus at %s: %w", conf.Address, err)
	}

	return &Client{milvus: milvusClient, config: cfg}, nil
}

func (c *Client) Close() error {
	return c.milvus.Close()
}

// HealthCheck 供就绪探针使用，走一次最轻的元数据请求
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.HealthCheck")
	defer span.End()

	if _, err := c.milvus.HasCollection(ctx, "health_check"); err != nil {
		span.RecordError(err)
		return fmt.Errorf("milvus health probe: %w", err)
	}
	return nil
}

// CollectionName 返回带前缀的集合名
func (c *Client) CollectionName(name string) string {
	if prefix := c.config.CollectionPrefix; prefix != "" {
		return prefix + "_" + name
	}
	return name
}

func (c *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	ctx, span := collSpan(ctx, "milvus.HasCollection", name)
	defer span.End()

	return c.milvus.HasCollection(ctx, c.CollectionName(name))
}

func (c *Client) LoadCollection(ctx context.Context, name string) error {
	ctx, span := collSpan(ctx, "milvus.LoadCollection", name)
	defer span.End()

	return c.milvus.LoadCollection(ctx, c.CollectionName(name), false)
}
