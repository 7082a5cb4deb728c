package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionDocChunks 文档子块集合
	CollectionDocChunks = "doc_chunks"

	// DefaultVectorDimension 缺省向量维度 (text-embedding-3-small)
	DefaultVectorDimension = 1536
)

// DocChunksSchema 文档子块 Collection Schema。
// 子块按 doc_id 归属父文档，source 记录来源文件，domain 用于
// 领域偏置检索（如 ocr_scan），content 存切分后的正文。
func DocChunksSchema(dim int) *entity.Schema {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}

	id := varcharField("id", 64)
	id.PrimaryKey = true

	vector := &entity.Field{
		Name:       "vector",
		DataType:   entity.FieldTypeFloatVector,
		TypeParams: map[string]string{"dim": strconv.Itoa(dim)},
	}

	return &entity.Schema{
		CollectionName: CollectionDocChunks,
		Description:    "Document chunks for two-level retrieval",
		Fields: []*entity.Field{
			id,
			vector,
			varcharField("doc_id", 64),
			varcharField("source", 512),
			varcharField("domain", 64),
			varcharField("content", 8192),
		},
	}
}

func varcharField(name string, maxLength int) *entity.Field {
	return &entity.Field{
		Name:       name,
		DataType:   entity.FieldTypeVarChar,
		TypeParams: map[string]string{"max_length": strconv.Itoa(maxLength)},
	}
}
