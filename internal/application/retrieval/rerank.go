package retrieval

import (
	"context"
	"strings"

	"deskmate-ai-api/pkg/logger"
)

// Reranker 定义应用层对"重排序"的最小依赖（port）。
// Rerank 返回按相关性降序排列的原始下标序列；实现可以截断结果，
// 排列中缺失的下标由调用方按原始相对顺序补齐，确保候选不丢失。
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]int, error)
	Enabled() bool
}

// applyRerank 对子块候选应用重排序。
// 重排器未配置或调用失败时保持向量检索顺序（可降级）。
func (e *Engine) applyRerank(ctx context.Context, query string, hits []*ChunkHit) []*ChunkHit {
	if e == nil || e.reranker == nil || !e.reranker.Enabled() || len(hits) == 0 {
		return hits
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		t := strings.TrimSpace(h.Content)
		if t == "" {
			// 重排器对空文本可能报错或降质，保证最小长度
			t = " "
		}
		texts[i] = t
	}

	order, err := e.reranker.Rerank(ctx, query, texts)
	if err != nil {
		logger.Warn(ctx, "rerank failed, keeping vector order", "error", err.Error())
		return hits
	}
	return reorderByIndex(hits, order)
}

// reorderByIndex 按下标排列重排候选。
// 越界或重复的下标被忽略，排列中缺失的下标按原始相对顺序追加在尾部。
func reorderByIndex(hits []*ChunkHit, order []int) []*ChunkHit {
	out := make([]*ChunkHit, 0, len(hits))
	seen := make(map[int]bool, len(hits))
	for _, idx := range order {
		if idx < 0 || idx >= len(hits) || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, hits[idx])
	}
	for i := range hits {
		if !seen[i] {
			out = append(out, hits[i])
		}
	}
	return out
}
