// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"deskmate-ai-api/internal/domain/entity"
)

// QueryExecutor 只读 SQL 执行接口
// 仅用于执行经过安全闸门校验的 SELECT 语句。
type QueryExecutor interface {
	// SelectRows 执行带命名参数 (:name) 的查询，返回保留列序的结果集
	SelectRows(ctx context.Context, query string, params map[string]any) (*entity.RowSet, error)
}

// SchemaIntrospector 库表结构探查接口
type SchemaIntrospector interface {
	// DescribeTables 返回目标库 public schema 下全部表的结构
	DescribeTables(ctx context.Context) ([]entity.TableSchema, error)
	// DatabaseName 返回目标库名
	DatabaseName() string
	// CacheKey 返回标识目标库实例的键 (host:port/database)
	CacheKey() string
}
