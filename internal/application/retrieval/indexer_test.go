package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByRunes(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		max     int
		overlap int
		want    []string
	}{
		{name: "blank returns nil", s: "   ", max: 4, overlap: 1, want: nil},
		{name: "short text stays whole", s: "abcd", max: 4, overlap: 1, want: []string{"abcd"}},
		{name: "non positive max keeps raw", s: "abcdef", max: 0, overlap: 1, want: []string{"abcdef"}},
		{
			name: "overlapping windows",
			s:    "abcdefghij", max: 4, overlap: 1,
			want: []string{"abcd", "defg", "ghij"},
		},
		{
			name: "overlap at or above max falls back to disjoint windows",
			s:    "abcdefghij", max: 4, overlap: 5,
			want: []string{"abcd", "efgh", "ij"},
		},
		{
			name: "whitespace only windows dropped",
			s:    "ab      cd", max: 3, overlap: 0,
			want: []string{"ab", "c", "d"},
		},
		{
			name: "hangul counted by runes",
			s:    "가나다라마바", max: 4, overlap: 2,
			want: []string{"가나다라", "다라마바"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitByRunes(tt.s, tt.max, tt.overlap))
		})
	}
}

func TestIndexer_UpsertDocuments_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("no documents", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, &fakeDocStore{}, 0)
		_, err := i.UpsertDocuments(ctx, nil)
		assert.EqualError(t, err, "documents are required")
	})

	t.Run("vector stack not configured", func(t *testing.T) {
		i := NewIndexer(nil, &fakeChunkIndex{}, &fakeDocStore{}, 0)
		_, err := i.UpsertDocuments(ctx, []DocumentInput{{Source: "a.md", Content: "내용"}})
		assert.ErrorIs(t, err, ErrVectorDisabled)
	})

	t.Run("source required", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, &fakeDocStore{}, 0)
		_, err := i.UpsertDocuments(ctx, []DocumentInput{{Source: "  ", Content: "내용"}})
		assert.EqualError(t, err, "document 0: source is required")
	})

	t.Run("content required", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, &fakeDocStore{}, 0)
		_, err := i.UpsertDocuments(ctx, []DocumentInput{
			{Source: "a.md", Content: "내용"},
			{Source: "b.md", Content: ""},
		})
		assert.EqualError(t, err, "document 1: content is required")
	})
}

func TestIndexer_UpsertDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("caller chunks with domain inheritance", func(t *testing.T) {
		chunks := &fakeChunkIndex{}
		store := &fakeDocStore{}
		i := NewIndexer(&fakeEmbedder{}, chunks, store, 0)

		ids, err := i.UpsertDocuments(ctx, []DocumentInput{{
			ID:       "doc-1",
			Source:   "manual.md",
			Content:  "  전체 본문  ",
			Metadata: map[string]any{"domain": "manual"},
			Chunks: []ChunkInput{
				{Content: "  첫 조각  "},
				{Content: "   "},
				{Content: "둘째 조각", Domain: "ocr_scan"},
			},
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-1"}, ids)

		// 重写前先清掉旧子块
		assert.Equal(t, []string{"doc-1"}, chunks.deleted)

		require.Len(t, chunks.inserted, 1)
		inserted := chunks.inserted[0]
		require.Len(t, inserted, 2)
		assert.Equal(t, "첫 조각", inserted[0].Content)
		assert.Equal(t, "manual", inserted[0].Domain)
		assert.Equal(t, "둘째 조각", inserted[1].Content)
		assert.Equal(t, "ocr_scan", inserted[1].Domain)
		for _, c := range inserted {
			assert.Equal(t, "doc-1", c.DocID)
			assert.Equal(t, "manual.md", c.Source)
			assert.NotEmpty(t, c.ID)
			assert.Equal(t, []float32{0.1, 0.2}, c.Vector)
		}

		require.Len(t, store.put, 1)
		parent := store.put[0]
		assert.Equal(t, "doc-1", parent.ID)
		assert.Equal(t, "전체 본문", parent.Content)
		assert.Equal(t, "manual.md", parent.Source())
		assert.Equal(t, "manual", parent.Domain())
	})

	t.Run("auto chunking and generated id", func(t *testing.T) {
		chunks := &fakeChunkIndex{}
		store := &fakeDocStore{}
		i := NewIndexer(&fakeEmbedder{}, chunks, store, 0)
		i.chunkSizeRunes = 4
		i.chunkOverlapRunes = 1

		ids, err := i.UpsertDocuments(ctx, []DocumentInput{{
			Source:  "note.md",
			Content: "abcdefghij",
		}})
		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.Len(t, ids[0], 36)

		require.Len(t, chunks.inserted, 1)
		inserted := chunks.inserted[0]
		require.Len(t, inserted, 3)
		assert.Equal(t, "abcd", inserted[0].Content)
		assert.Equal(t, "defg", inserted[1].Content)
		assert.Equal(t, "ghij", inserted[2].Content)
		for _, c := range inserted {
			assert.Equal(t, ids[0], c.DocID)
		}
	})

	t.Run("embedding batched by configured size", func(t *testing.T) {
		emb := &fakeEmbedder{}
		i := NewIndexer(emb, &fakeChunkIndex{}, &fakeDocStore{}, 2)

		_, err := i.UpsertDocuments(ctx, []DocumentInput{{
			Source:  "a.md",
			Content: "본문",
			Chunks: []ChunkInput{
				{Content: "c1"}, {Content: "c2"}, {Content: "c3"}, {Content: "c4"}, {Content: "c5"},
			},
		}})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 2, 1}, emb.batchSizes)
	})

	t.Run("embedding failure aborts before insert", func(t *testing.T) {
		chunks := &fakeChunkIndex{}
		store := &fakeDocStore{}
		i := NewIndexer(&fakeEmbedder{err: errors.New("quota exceeded")}, chunks, store, 0)

		_, err := i.UpsertDocuments(ctx, []DocumentInput{{Source: "a.md", Content: "내용"}})
		assert.EqualError(t, err, "quota exceeded")
		assert.Empty(t, chunks.inserted)
		assert.Empty(t, store.put)
	})

	t.Run("insert failure aborts before parent put", func(t *testing.T) {
		store := &fakeDocStore{}
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{insertErr: errors.New("milvus write failed")}, store, 0)

		_, err := i.UpsertDocuments(ctx, []DocumentInput{{Source: "a.md", Content: "내용"}})
		assert.EqualError(t, err, "milvus write failed")
		assert.Empty(t, store.put)
	})

	t.Run("stale chunk cleanup failure propagates", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{deleteErr: errors.New("delete failed")}, &fakeDocStore{}, 0)

		_, err := i.UpsertDocuments(ctx, []DocumentInput{{ID: "doc-1", Source: "a.md", Content: "내용"}})
		assert.EqualError(t, err, "delete failed")
	})

	t.Run("parent put failure propagates", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, &fakeDocStore{putErr: errors.New("redis down")}, 0)

		_, err := i.UpsertDocuments(ctx, []DocumentInput{{Source: "a.md", Content: "내용"}})
		assert.EqualError(t, err, "redis down")
	})
}

func TestIndexer_DeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("id required", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, &fakeDocStore{}, 0)
		err := i.DeleteDocument(ctx, "  ")
		assert.EqualError(t, err, "document id is required")
	})

	t.Run("removes chunks then parent", func(t *testing.T) {
		chunks := &fakeChunkIndex{}
		store := &fakeDocStore{}
		i := NewIndexer(&fakeEmbedder{}, chunks, store, 0)

		err := i.DeleteDocument(ctx, " doc-9 ")
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-9"}, chunks.deleted)
		assert.Equal(t, [][]string{{"doc-9"}}, store.removed)
	})

	t.Run("chunk deletion failure keeps parent", func(t *testing.T) {
		store := &fakeDocStore{}
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{deleteErr: errors.New("delete failed")}, store, 0)

		err := i.DeleteDocument(ctx, "doc-9")
		assert.EqualError(t, err, "delete failed")
		assert.Empty(t, store.removed)
	})
}

func TestIndexer_ListDocumentKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("lists stored keys", func(t *testing.T) {
		store := &fakeDocStore{keys: []string{"doc-1", "doc-2"}}
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, store, 0)

		keys, err := i.ListDocumentKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"doc-1", "doc-2"}, keys)
	})

	t.Run("store not configured", func(t *testing.T) {
		i := NewIndexer(&fakeEmbedder{}, &fakeChunkIndex{}, nil, 0)
		_, err := i.ListDocumentKeys(ctx)
		assert.ErrorIs(t, err, ErrVectorDisabled)
	})
}
