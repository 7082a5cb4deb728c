package retrieval

import "context"

// ChunkIndex 定义应用层对“子块向量索引”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type ChunkIndex interface {
	EnsureCollection(ctx context.Context) error
	SearchChunks(ctx context.Context, params *ChunkSearchParams) ([]*ChunkHit, error)
	InsertChunks(ctx context.Context, chunks []*DocChunk) error
	DeleteChunksByDoc(ctx context.Context, docID string) error
}

// ChunkSearchParams 子块检索参数
type ChunkSearchParams struct {
	QueryVector []float32
	TopK        int

	// Domain 非空时仅检索该领域标签的子块
	Domain string
}

// ChunkHit 子块命中结果，Score 为距离（越小越相关）
type ChunkHit struct {
	ID      string
	DocID   string
	Source  string
	Domain  string
	Content string
	Score   float64
}

// DocChunk 待写入索引的子块
type DocChunk struct {
	ID      string
	DocID   string
	Source  string
	Domain  string
	Content string
	Vector  []float32
}
