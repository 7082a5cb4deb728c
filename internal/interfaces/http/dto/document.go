// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"deskmate-ai-api/internal/application/retrieval"
)

// ChunkPayload 调用方预切分的子块
type ChunkPayload struct {
	Content string `json:"content" binding:"required"`
	Domain  string `json:"domain,omitempty"`
}

// DocumentPayload 单个文档的写入载荷
// ID 缺省时由服务端生成；Chunks 缺省时按固定长度切分 Content。
type DocumentPayload struct {
	ID       string         `json:"id,omitempty"`
	Source   string         `json:"source" binding:"required,max=512"`
	Content  string         `json:"content" binding:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Chunks   []ChunkPayload `json:"chunks,omitempty"`
}

// IngestDocumentsRequest 批量文档写入请求
type IngestDocumentsRequest struct {
	Documents []DocumentPayload `json:"documents" binding:"required,min=1,dive"`
}

// ToDocumentInputs 转换为应用层文档输入
func (r *IngestDocumentsRequest) ToDocumentInputs() []retrieval.DocumentInput {
	docs := make([]retrieval.DocumentInput, 0, len(r.Documents))
	for _, d := range r.Documents {
		chunks := make([]retrieval.ChunkInput, 0, len(d.Chunks))
		for _, ch := range d.Chunks {
			chunks = append(chunks, retrieval.ChunkInput{
				Content: ch.Content,
				Domain:  ch.Domain,
			})
		}
		docs = append(docs, retrieval.DocumentInput{
			ID:       d.ID,
			Source:   d.Source,
			Content:  d.Content,
			Metadata: d.Metadata,
			Chunks:   chunks,
		})
	}
	return docs
}

// IngestDocumentsResponse 批量文档写入响应
type IngestDocumentsResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// DocumentKeysResponse 文档键列表响应
type DocumentKeysResponse struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}
