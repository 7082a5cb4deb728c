// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"deskmate-ai-api/internal/domain/entity"
)

// DocumentStore 父文档存储接口
// 两级检索的第二级：子块命中后按 ID 批量回取父文档。
type DocumentStore interface {
	// BatchGet 按 ID 批量获取父文档，返回切片与 ids 等长，缺失位置为 nil
	BatchGet(ctx context.Context, ids []string) ([]*entity.ParentDocument, error)
	// BatchPut 批量写入父文档
	BatchPut(ctx context.Context, docs []*entity.ParentDocument) error
	// BatchDelete 按 ID 批量删除父文档
	BatchDelete(ctx context.Context, ids []string) error
	// ListKeys 列出全部父文档 ID
	ListKeys(ctx context.Context) ([]string, error)
}
