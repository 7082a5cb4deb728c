package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskmate-ai-api/internal/domain/entity"
)

type fakeEmbedder struct {
	err        error
	batchSizes []int
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.batchSizes = append(f.batchSizes, len(texts))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2}
	}
	return out, nil
}

type fakeChunkIndex struct {
	ensureErr error
	searchErr int // 第 N 次检索返回错误，0 表示不报错
	searches  []*ChunkSearchParams
	// results 按 Domain 过滤值返回候选，全域检索用空串键
	results map[string][]*ChunkHit

	inserted  [][]*DocChunk
	insertErr error
	deleted   []string
	deleteErr error
}

func (f *fakeChunkIndex) EnsureCollection(ctx context.Context) error { return f.ensureErr }

func (f *fakeChunkIndex) SearchChunks(ctx context.Context, params *ChunkSearchParams) ([]*ChunkHit, error) {
	f.searches = append(f.searches, params)
	if f.searchErr > 0 && len(f.searches) == f.searchErr {
		return nil, errors.New("search failed")
	}
	return f.results[params.Domain], nil
}

func (f *fakeChunkIndex) InsertChunks(ctx context.Context, chunks []*DocChunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, chunks)
	return nil
}

func (f *fakeChunkIndex) DeleteChunksByDoc(ctx context.Context, docID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, docID)
	return nil
}

type fakeDocStore struct {
	docs    map[string]*entity.ParentDocument
	getErr  error
	put     []*entity.ParentDocument
	putErr  error
	removed [][]string
	keys    []string
	keysErr error
}

func (f *fakeDocStore) BatchGet(ctx context.Context, ids []string) ([]*entity.ParentDocument, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]*entity.ParentDocument, len(ids))
	for i, id := range ids {
		out[i] = f.docs[id]
	}
	return out, nil
}

func (f *fakeDocStore) BatchPut(ctx context.Context, docs []*entity.ParentDocument) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.put = append(f.put, docs...)
	return nil
}

func (f *fakeDocStore) BatchDelete(ctx context.Context, ids []string) error {
	f.removed = append(f.removed, ids)
	return nil
}

func (f *fakeDocStore) ListKeys(ctx context.Context) ([]string, error) {
	return f.keys, f.keysErr
}

type fakeReranker struct {
	enabled  bool
	order    []int
	err      error
	gotQuery string
	gotTexts []string
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, texts []string) ([]int, error) {
	f.gotQuery = query
	f.gotTexts = texts
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeReranker) Enabled() bool { return f.enabled }

func hit(id, docID, source, content string, score float64) *ChunkHit {
	return &ChunkHit{ID: id, DocID: docID, Source: source, Content: content, Score: score}
}

func parentDoc(id, content string) *entity.ParentDocument {
	return entity.NewParentDocument(id, content, map[string]any{"source": id + ".md"})
}

func TestEngine_Search_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("blank query", func(t *testing.T) {
		e := NewEngine(&fakeEmbedder{}, &fakeChunkIndex{}, &fakeDocStore{}, nil, 0, 0, "ocr_scan")
		_, err := e.Search(ctx, "   ")
		assert.EqualError(t, err, "query is required")
	})

	t.Run("vector stack not configured", func(t *testing.T) {
		e := NewEngine(nil, &fakeChunkIndex{}, &fakeDocStore{}, nil, 0, 0, "ocr_scan")
		_, err := e.Search(ctx, "질문")
		assert.ErrorIs(t, err, ErrVectorDisabled)
	})

	t.Run("ensure collection failure propagates", func(t *testing.T) {
		e := NewEngine(&fakeEmbedder{}, &fakeChunkIndex{ensureErr: errors.New("milvus down")}, &fakeDocStore{}, nil, 0, 0, "ocr_scan")
		_, err := e.Search(ctx, "질문")
		assert.EqualError(t, err, "milvus down")
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		e := NewEngine(&fakeEmbedder{err: errors.New("quota exceeded")}, &fakeChunkIndex{}, &fakeDocStore{}, nil, 0, 0, "ocr_scan")
		_, err := e.Search(ctx, "질문")
		assert.EqualError(t, err, "quota exceeded")
	})

	t.Run("chunk search failure propagates", func(t *testing.T) {
		e := NewEngine(&fakeEmbedder{}, &fakeChunkIndex{searchErr: 1}, &fakeDocStore{}, nil, 0, 0, "ocr_scan")
		_, err := e.Search(ctx, "질문")
		assert.EqualError(t, err, "search failed")
	})
}

func TestEngine_Search_TwoTier(t *testing.T) {
	ctx := context.Background()

	chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{
		"": {
			hit("c1", "p1", "p1.md", "첫 번째 조각", 0.5),
			hit("c2", "p2", "p2.md", "두 번째 조각", 0.3),
			hit("c3", "p1", "p1.md", "세 번째 조각", 0.2),
		},
	}}
	store := &fakeDocStore{docs: map[string]*entity.ParentDocument{
		"p1": parentDoc("p1", "부모 문서 1"),
		"p2": parentDoc("p2", "부모 문서 2"),
	}}
	e := NewEngine(&fakeEmbedder{}, chunks, store, nil, 0, 0, "ocr_scan")

	got, err := e.Search(ctx, "점수 규칙")
	require.NoError(t, err)

	// 全域检索一次，TopK 用召回宽度
	require.Len(t, chunks.searches, 1)
	assert.Empty(t, chunks.searches[0].Domain)
	assert.Equal(t, defaultInitialK, chunks.searches[0].TopK)
	assert.Equal(t, []float32{0.1, 0.2}, chunks.searches[0].QueryVector)

	// 同一父文档取最小距离，距离升序
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].Doc.ID)
	assert.Equal(t, 0.2, got[0].Score)
	assert.Equal(t, "p2", got[1].Doc.ID)
	assert.Equal(t, 0.3, got[1].Score)
}

func TestEngine_Search_NoCandidates(t *testing.T) {
	e := NewEngine(&fakeEmbedder{}, &fakeChunkIndex{results: map[string][]*ChunkHit{}}, &fakeDocStore{}, nil, 0, 0, "ocr_scan")

	got, err := e.Search(context.Background(), "아무것도 없는 질문")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEngine_Search_MissingParentSkipped(t *testing.T) {
	chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{
		"": {hit("c1", "p1", "p1.md", "조각", 0.2), hit("c2", "p2", "p2.md", "조각", 0.3)},
	}}
	store := &fakeDocStore{docs: map[string]*entity.ParentDocument{"p1": parentDoc("p1", "문서 1")}}
	e := NewEngine(&fakeEmbedder{}, chunks, store, nil, 0, 0, "ocr_scan")

	got, err := e.Search(context.Background(), "질문")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].Doc.ID)
}

func TestEngine_Search_ParentFetchError(t *testing.T) {
	chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{
		"": {hit("c1", "p1", "p1.md", "조각", 0.2)},
	}}
	store := &fakeDocStore{getErr: errors.New("redis down")}
	e := NewEngine(&fakeEmbedder{}, chunks, store, nil, 0, 0, "ocr_scan")

	_, err := e.Search(context.Background(), "질문")
	assert.EqualError(t, err, "redis down")
}

func TestEngine_Search_TopKCut(t *testing.T) {
	chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{
		"": {
			hit("c1", "p1", "p1.md", "조각 1", 0.1),
			hit("c2", "p2", "p2.md", "조각 2", 0.2),
			hit("c3", "p3", "p3.md", "조각 3", 0.3),
			hit("c4", "p4", "p4.md", "조각 4", 0.4),
		},
	}}
	store := &fakeDocStore{docs: map[string]*entity.ParentDocument{
		"p1": parentDoc("p1", "1"), "p2": parentDoc("p2", "2"),
		"p3": parentDoc("p3", "3"), "p4": parentDoc("p4", "4"),
	}}
	e := NewEngine(&fakeEmbedder{}, chunks, store, nil, 10, 2, "ocr_scan")

	got, err := e.Search(context.Background(), "질문")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].Doc.ID)
	assert.Equal(t, "p2", got[1].Doc.ID)
}

func TestEngine_Search_RerankSelectsCandidates(t *testing.T) {
	hits := []*ChunkHit{
		hit("c1", "p1", "p1.md", "조각 1", 0.1),
		hit("c2", "p2", "p2.md", "  ", 0.2),
		hit("c3", "p3", "p3.md", "조각 3", 0.3),
	}
	store := &fakeDocStore{docs: map[string]*entity.ParentDocument{
		"p1": parentDoc("p1", "1"), "p2": parentDoc("p2", "2"), "p3": parentDoc("p3", "3"),
	}}

	t.Run("rerank order decides the cut", func(t *testing.T) {
		chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{"": hits}}
		rr := &fakeReranker{enabled: true, order: []int{2, 0, 1}}
		e := NewEngine(&fakeEmbedder{}, chunks, store, rr, 10, 1, "ocr_scan")

		got, err := e.Search(context.Background(), "질문")
		require.NoError(t, err)

		// 空白正文以单空格送入重排器
		assert.Equal(t, []string{"조각 1", " ", "조각 3"}, rr.gotTexts)
		assert.Equal(t, "질문", rr.gotQuery)

		require.Len(t, got, 1)
		assert.Equal(t, "p3", got[0].Doc.ID)
	})

	t.Run("rerank failure keeps vector order", func(t *testing.T) {
		chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{"": hits}}
		rr := &fakeReranker{enabled: true, err: errors.New("rerank api down")}
		e := NewEngine(&fakeEmbedder{}, chunks, store, rr, 10, 1, "ocr_scan")

		got, err := e.Search(context.Background(), "질문")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p1", got[0].Doc.ID)
	})

	t.Run("disabled reranker is not invoked", func(t *testing.T) {
		chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{"": hits}}
		rr := &fakeReranker{enabled: false, order: []int{2}}
		e := NewEngine(&fakeEmbedder{}, chunks, store, rr, 10, 1, "ocr_scan")

		got, err := e.Search(context.Background(), "질문")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "p1", got[0].Doc.ID)
		assert.Nil(t, rr.gotTexts)
	})
}

func TestEngine_Search_TrackingQueryBias(t *testing.T) {
	ocrHits := []*ChunkHit{
		hit("o1", "p1", "scan1.png", "운송장 APX3002345386815CN", 0.2),
		hit("o2", "p1", "scan1.png", "수취인 주소", 0.4),
		hit("o3", "p2", "scan2.png", "발송일 안내", 0.5),
	}

	t.Run("enough biased hits skip the full search", func(t *testing.T) {
		chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{"ocr_scan": ocrHits}}
		store := &fakeDocStore{docs: map[string]*entity.ParentDocument{
			"p1": parentDoc("p1", "스캔 1"), "p2": parentDoc("p2", "스캔 2"),
		}}
		e := NewEngine(&fakeEmbedder{}, chunks, store, nil, 8, 5, "ocr_scan")

		got, err := e.Search(context.Background(), "운송장 APX3002345386815CN 어디까지 갔어")
		require.NoError(t, err)

		require.Len(t, chunks.searches, 1)
		assert.Equal(t, "ocr_scan", chunks.searches[0].Domain)
		require.Len(t, got, 2)
		assert.Equal(t, "p1", got[0].Doc.ID)
	})

	t.Run("thin biased hits fall back to merged full search", func(t *testing.T) {
		chunks := &fakeChunkIndex{results: map[string][]*ChunkHit{
			"ocr_scan": {
				hit("o1", "p1", "scan1.png", "운송장 APX3002345386815CN", 0.2),
				hit("o2", "p2", "scan2.png", "발송일 안내", 0.5),
			},
			"": {
				// 与 OCR 命中重复的子块会被去重
				hit("a1", "p1", "scan1.png", "운송장 APX3002345386815CN", 0.2),
				hit("a2", "p3", "faq.md", "배송 FAQ", 0.3),
			},
		}}
		store := &fakeDocStore{docs: map[string]*entity.ParentDocument{
			"p1": parentDoc("p1", "스캔 1"),
			"p2": parentDoc("p2", "스캔 2"),
			"p3": parentDoc("p3", "FAQ"),
		}}
		e := NewEngine(&fakeEmbedder{}, chunks, store, nil, 8, 5, "ocr_scan")

		got, err := e.Search(context.Background(), "운송장 조회해줘")
		require.NoError(t, err)

		require.Len(t, chunks.searches, 2)
		assert.Equal(t, "ocr_scan", chunks.searches[0].Domain)
		assert.Empty(t, chunks.searches[1].Domain)

		// 合并去重后按距离升序：p1(0.2), p3(0.3), p2(0.5)
		require.Len(t, got, 3)
		assert.Equal(t, "p1", got[0].Doc.ID)
		assert.Equal(t, "p3", got[1].Doc.ID)
		assert.Equal(t, "p2", got[2].Doc.ID)
	})
}

func TestMinBiasedHits(t *testing.T) {
	assert.Equal(t, 3, minBiasedHits(4))
	assert.Equal(t, 3, minBiasedHits(8))
	assert.Equal(t, 5, minBiasedHits(20))
	assert.Equal(t, 10, minBiasedHits(40))
}

func TestDedupeChunks(t *testing.T) {
	a := hit("a", "p1", "s.md", "같은 내용", 0.2)
	b := hit("b", "p1", "s.md", "같은 내용", 0.4)
	c := hit("c", "p2", "s.md", "같은 내용", 0.3)
	d := hit("d", "p1", "other.md", "같은 내용", 0.5)

	got := dedupeChunks([]*ChunkHit{a, nil}, []*ChunkHit{b, c, d})

	// （来源, 父文档, 前缀）三元组相同的只保留先到者
	require.Len(t, got, 3)
	assert.Same(t, a, got[0])
	assert.Same(t, c, got[1])
	assert.Same(t, d, got[2])
}

func TestDedupeChunks_LongContentPrefix(t *testing.T) {
	long1 := hit("a", "p1", "s.md", string(make80runes())+"꼬리 하나", 0.2)
	long2 := hit("b", "p1", "s.md", string(make80runes())+"꼬리 둘", 0.4)

	// 前 80 字相同即视为重复
	got := dedupeChunks([]*ChunkHit{long1, long2})
	require.Len(t, got, 1)
	assert.Same(t, long1, got[0])
}

func make80runes() []rune {
	runes := make([]rune, 80)
	for i := range runes {
		runes[i] = '가'
	}
	return runes
}

func TestReorderByIndex(t *testing.T) {
	h0 := hit("h0", "p0", "s", "0", 0.1)
	h1 := hit("h1", "p1", "s", "1", 0.2)
	h2 := hit("h2", "p2", "s", "2", 0.3)
	hits := []*ChunkHit{h0, h1, h2}

	tests := []struct {
		name  string
		order []int
		want  []*ChunkHit
	}{
		{name: "full permutation", order: []int{2, 0, 1}, want: []*ChunkHit{h2, h0, h1}},
		{name: "missing indexes appended in original order", order: []int{1}, want: []*ChunkHit{h1, h0, h2}},
		{name: "out of range and duplicates ignored", order: []int{5, -1, 2, 2}, want: []*ChunkHit{h2, h0, h1}},
		{name: "empty order keeps original", order: nil, want: []*ChunkHit{h0, h1, h2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reorderByIndex(hits, tt.order))
		})
	}
}
