package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"deskmate-ai-api/internal/domain/repository"
)

// Engine 两级检索引擎：子块向量召回 → 重排序 → 父文档还原。
type Engine struct {
	embedder embedding.Embedder
	chunks   ChunkIndex
	parents  repository.DocumentStore
	reranker Reranker

	initialK  int
	topK      int
	ocrDomain string
}

func NewEngine(embedder embedding.Embedder, chunkIndex ChunkIndex, docStore repository.DocumentStore, reranker Reranker, initialK, topK int, ocrDomain string) *Engine {
	if initialK <= 0 {
		initialK = defaultInitialK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Engine{
		embedder:  embedder,
		chunks:    chunkIndex,
		parents:   docStore,
		reranker:  reranker,
		initialK:  initialK,
		topK:      topK,
		ocrDomain: ocrDomain,
	}
}

const (
	defaultInitialK = 20
	defaultTopK     = 5
)

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.chunks != nil && e.parents != nil
}

// Search 检索与问题最相关的父文档，按距离升序返回，最多 topK 条。
// 无命中时返回空切片（由上层守卫判定 no_results）。
func (e *Engine) Search(ctx context.Context, query string) ([]ScoredParent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidInputf("query is required")
	}
	if !e.Enabled() {
		return nil, ErrVectorDisabled
	}
	if err := e.chunks.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	vec, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// 1) 子块召回（含运单类查询的领域偏置）
	candidates, err := e.childCandidates(ctx, query, vec)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// 2) 重排序后只保留最优的 topK 个子块
	candidates = e.applyRerank(ctx, query, candidates)
	cut := e.topK
	if cut < 1 {
		cut = 1
	}
	if len(candidates) > cut {
		candidates = candidates[:cut]
	}

	// 3) 父文档还原
	parents, err := e.restoreParents(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(parents) > e.topK {
		parents = parents[:e.topK]
	}
	return parents, nil
}

// childCandidates 召回子块候选。
// 运单类查询先限定 OCR 领域；结果不足 max(3, k/4) 时用全域检索补充，
// 按（来源, 父文档, 正文前 80 字）去重后重新按距离排序并截断到 k。
func (e *Engine) childCandidates(ctx context.Context, query string, vec []float32) ([]*ChunkHit, error) {
	k := e.initialK

	if !looksLikeTrackingQuery(query) {
		return e.chunks.SearchChunks(ctx, &ChunkSearchParams{QueryVector: vec, TopK: k})
	}

	filtered, err := e.chunks.SearchChunks(ctx, &ChunkSearchParams{QueryVector: vec, TopK: k, Domain: e.ocrDomain})
	if err != nil {
		return nil, err
	}
	if len(filtered) >= minBiasedHits(k) {
		return filtered, nil
	}

	all, err := e.chunks.SearchChunks(ctx, &ChunkSearchParams{QueryVector: vec, TopK: k})
	if err != nil {
		return nil, err
	}

	merged := dedupeChunks(filtered, all)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score < merged[j].Score })
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

// minBiasedHits 领域偏置检索可直接采用的最小命中数
func minBiasedHits(k int) int {
	n := k / 4
	if n < 3 {
		return 3
	}
	return n
}

// dedupeChunks 合并候选并去重，先到者优先。
// 去重键为（来源, 父文档 ID, 正文前 80 字），OCR 与全域检索
// 可能返回同一子块的两份拷贝。
func dedupeChunks(groups ...[]*ChunkHit) []*ChunkHit {
	type dedupeKey struct {
		source string
		docID  string
		prefix string
	}

	total := 0
	for _, g := range groups {
		total += len(g)
	}
	seen := make(map[dedupeKey]struct{}, total)
	out := make([]*ChunkHit, 0, total)
	for _, g := range groups {
		for _, h := range g {
			if h == nil {
				continue
			}
			key := dedupeKey{source: h.Source, docID: h.DocID, prefix: runePrefix(h.Content, 80)}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}

func runePrefix(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// restoreParents 将子块命中归并到父文档。
// 同一父文档取最小距离作为代表分数；批量回取后丢弃无法解析的 ID，
// 结果按分数升序，同分保持子块首次出现的顺序。
func (e *Engine) restoreParents(ctx context.Context, hits []*ChunkHit) ([]ScoredParent, error) {
	bestScore := make(map[string]float64, len(hits))
	order := make([]string, 0, len(hits))
	for _, h := range hits {
		pid := strings.TrimSpace(h.DocID)
		if pid == "" {
			continue
		}
		prev, ok := bestScore[pid]
		if !ok {
			bestScore[pid] = h.Score
			order = append(order, pid)
			continue
		}
		if h.Score < prev {
			bestScore[pid] = h.Score
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	docs, err := e.parents.BatchGet(ctx, order)
	if err != nil {
		return nil, err
	}

	out := make([]ScoredParent, 0, len(order))
	for i, pid := range order {
		if i >= len(docs) || docs[i] == nil {
			continue
		}
		out = append(out, ScoredParent{Doc: docs[i], Score: bestScore[pid]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out, nil
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e == nil || e.embedder == nil {
		return nil, ErrVectorDisabled
	}
	vecs, err := e.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return toFloat32(vecs[0]), nil
}
