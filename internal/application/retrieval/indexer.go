package retrieval

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"deskmate-ai-api/internal/domain/entity"
	"deskmate-ai-api/internal/domain/repository"
)

// 切块与嵌入的缺省参数，按 rune 计数以兼容中英混排文本。
const (
	defaultChunkSizeRunes    = 800
	defaultChunkOverlapRunes = 80
	defaultEmbeddingBatch    = 16
)

// Indexer 负责父文档与子块索引的写路径。
// 摄取（OCR、清洗）发生在服务之外，这里只接收成品文档并建立两级结构。
type Indexer struct {
	embedder embedding.Embedder
	chunks   ChunkIndex
	parents  repository.DocumentStore

	embeddingBatchSize int
	chunkSizeRunes     int
	chunkOverlapRunes  int
}

func NewIndexer(embedder embedding.Embedder, chunkIndex ChunkIndex, docStore repository.DocumentStore, embeddingBatchSize int) *Indexer {
	i := &Indexer{
		embedder:           embedder,
		chunks:             chunkIndex,
		parents:            docStore,
		embeddingBatchSize: embeddingBatchSize,
		chunkSizeRunes:     defaultChunkSizeRunes,
		chunkOverlapRunes:  defaultChunkOverlapRunes,
	}
	if i.embeddingBatchSize <= 0 {
		i.embeddingBatchSize = defaultEmbeddingBatch
	}
	return i
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.chunks != nil && i.parents != nil
}

func (i *Indexer) ensureCollection(ctx context.Context) error {
	if i == nil || i.chunks == nil {
		return ErrVectorDisabled
	}
	return i.chunks.EnsureCollection(ctx)
}

// UpsertDocuments 批量写入父文档并重建其子块索引。
// 同一文档 ID 重复写入时先删除旧子块，避免旧分片残留。
// 返回实际写入的文档 ID（调用方未指定时为新生成的 UUID）。
func (i *Indexer) UpsertDocuments(ctx context.Context, docs []DocumentInput) ([]string, error) {
	if len(docs) == 0 {
		return nil, invalidInputf("documents are required")
	}
	// 整批先校验，坏文档不落任何写副作用
	for idx := range docs {
		if strings.TrimSpace(docs[idx].Source) == "" {
			return nil, invalidInputf("document %d: source is required", idx)
		}
		if strings.TrimSpace(docs[idx].Content) == "" {
			return nil, invalidInputf("document %d: content is required", idx)
		}
	}
	if !i.Enabled() {
		return nil, ErrVectorDisabled
	}
	if err := i.ensureCollection(ctx); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	parents := make([]*entity.ParentDocument, 0, len(docs))
	embedInputs := make([]string, 0, len(docs)*4)
	pending := make([]*DocChunk, 0, len(docs)*4)

	for idx := range docs {
		doc := docs[idx]
		source := strings.TrimSpace(doc.Source)
		content := strings.TrimSpace(doc.Content)

		id := strings.TrimSpace(doc.ID)
		if id == "" {
			id = uuid.NewString()
		}

		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["source"] = source
		docDomain := ""
		if v, ok := meta["domain"].(string); ok {
			docDomain = strings.TrimSpace(v)
		}

		if err := i.chunks.DeleteChunksByDoc(ctx, id); err != nil {
			return nil, err
		}

		pieces := doc.Chunks
		if len(pieces) == 0 {
			for _, part := range splitByRunes(content, i.chunkSizeRunes, i.chunkOverlapRunes) {
				pieces = append(pieces, ChunkInput{Content: part})
			}
		}
		for _, piece := range pieces {
			text := strings.TrimSpace(piece.Content)
			if text == "" {
				continue
			}
			domain := strings.TrimSpace(piece.Domain)
			if domain == "" {
				domain = docDomain
			}
			embedInputs = append(embedInputs, text)
			pending = append(pending, &DocChunk{
				ID:      uuid.NewString(),
				DocID:   id,
				Source:  source,
				Domain:  domain,
				Content: text,
			})
		}

		ids = append(ids, id)
		parents = append(parents, entity.NewParentDocument(id, content, meta))
	}

	if len(pending) > 0 {
		vectors, err := i.embedBatch(ctx, embedInputs)
		if err != nil {
			return nil, err
		}
		for idx := range pending {
			pending[idx].Vector = vectors[idx]
		}
		if err := i.chunks.InsertChunks(ctx, pending); err != nil {
			return nil, err
		}
	}

	if err := i.parents.BatchPut(ctx, parents); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteDocument 删除父文档及其全部子块
func (i *Indexer) DeleteDocument(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidInputf("document id is required")
	}
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	if err := i.ensureCollection(ctx); err != nil {
		return err
	}
	if err := i.chunks.DeleteChunksByDoc(ctx, id); err != nil {
		return err
	}
	return i.parents.BatchDelete(ctx, []string{id})
}

// ListDocumentKeys 列出已存储的父文档 ID
func (i *Indexer) ListDocumentKeys(ctx context.Context) ([]string, error) {
	if i == nil || i.parents == nil {
		return nil, ErrVectorDisabled
	}
	return i.parents.ListKeys(ctx)
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if i == nil || i.embedder == nil {
		return nil, ErrVectorDisabled
	}

	out := make([][]float32, 0, len(texts))
	for len(texts) > 0 {
		n := min(i.embeddingBatchSize, len(texts))
		vecs, err := i.embedder.EmbedStrings(ctx, texts[:n])
		if err != nil {
			return nil, err
		}
		for _, vec := range vecs {
			out = append(out, toFloat32(vec))
		}
		texts = texts[n:]
	}
	return out, nil
}

func toFloat32(v []float64) []float32 {
	f := make([]float32, len(v))
	for idx, x := range v {
		f[idx] = float32(x)
	}
	return f
}

// splitByRunes 按字符数切分文本，相邻块之间保留 overlap 的重叠
func splitByRunes(s string, maxRunes int, overlapRunes int) []string {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return []string{text}
	}

	step := maxRunes
	if overlapRunes > 0 && overlapRunes < maxRunes {
		step = maxRunes - overlapRunes
	}

	var out []string
	for start := 0; ; start += step {
		end := min(start+maxRunes, len(runes))
		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
