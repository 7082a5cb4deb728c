package milvus

import (
	"context"

	"deskmate-ai-api/internal/application/retrieval"
)

// ChunkIndexAdapter 把向量仓储适配为应用层的子块索引 port
type ChunkIndexAdapter struct {
	repo *Repository
}

func NewChunkIndexAdapter(repo *Repository) *ChunkIndexAdapter {
	return &ChunkIndexAdapter{repo: repo}
}

var _ retrieval.ChunkIndex = (*ChunkIndexAdapter)(nil)

// ready 向量库未接入时统一报 ErrVectorDisabled
func (a *ChunkIndexAdapter) ready() error {
	if a == nil || a.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return nil
}

func (a *ChunkIndexAdapter) EnsureCollection(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.repo.EnsureDocChunksCollection(ctx)
}

func (a *ChunkIndexAdapter) SearchChunks(ctx context.Context, params *retrieval.ChunkSearchParams) ([]*retrieval.ChunkHit, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, nil
	}

	out, err := a.repo.SearchChunks(ctx, &ChunkQuery{
		QueryVector: params.QueryVector,
		TopK:        params.TopK,
		Domain:      params.Domain,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]*retrieval.ChunkHit, 0, len(out))
	for _, v := range out {
		if v != nil {
			hits = append(hits, toChunkHit(v))
		}
	}
	return hits, nil
}

func (a *ChunkIndexAdapter) InsertChunks(ctx context.Context, chunks []*retrieval.DocChunk) error {
	if err := a.ready(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	records := make([]*ChunkRecord, 0, len(chunks))
	for _, c := range chunks {
		if c != nil {
			records = append(records, toChunkRecord(c))
		}
	}
	return a.repo.InsertChunks(ctx, records)
}

func (a *ChunkIndexAdapter) DeleteChunksByDoc(ctx context.Context, docID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.repo.DeleteByDocID(ctx, docID)
}

func toChunkHit(v *ChunkResult) *retrieval.ChunkHit {
	return &retrieval.ChunkHit{
		ID:      v.ID,
		DocID:   v.DocID,
		Source:  v.Source,
		Domain:  v.Domain,
		Content: v.Content,
		Score:   float64(v.Score),
	}
}

func toChunkRecord(c *retrieval.DocChunk) *ChunkRecord {
	return &ChunkRecord{
		ID:      c.ID,
		DocID:   c.DocID,
		Source:  c.Source,
		Domain:  c.Domain,
		Content: c.Content,
		Vector:  c.Vector,
	}
}
