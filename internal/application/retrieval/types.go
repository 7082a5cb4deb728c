package retrieval

import "deskmate-ai-api/internal/domain/entity"

// ScoredParent 父文档检索结果。
// Score 取该父文档全部子块命中中的最小距离 (越小越相关)。
type ScoredParent struct {
	Doc   *entity.ParentDocument
	Score float64
}

// DocumentInput 文档写入输入。
// Chunks 为空时由索引器按固定长度切分 Content。
type DocumentInput struct {
	ID       string
	Source   string
	Content  string
	Metadata map[string]any
	Chunks   []ChunkInput
}

// ChunkInput 调用方预切分的子块。
// Domain 为空时继承文档级领域标签。
type ChunkInput struct {
	Content string
	Domain  string
}
