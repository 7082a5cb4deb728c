package answer

import (
	"unicode/utf8"

	"deskmate-ai-api/internal/application/retrieval"
)

// 守卫判定原因
const (
	GuardOK                   = "ok"
	GuardNoResults            = "no_results"
	GuardLowConfidence        = "low_confidence"
	GuardInsufficientGoodHits = "insufficient_good_hits"
	GuardParseFailed          = "parse_failed"
	GuardCommandNotAllowed    = "command_not_allowed"
	GuardSQLNotSelectOnly     = "sql_not_select_only"
	GuardDBExecuteFailed      = "db_execute_failed"

	// ask 路径的降级层级标识
	GuardSQLParseFallbackOK      = "sql_query_parse_failed_fallback_ok"
	GuardSQLParseFallbackSummary = "sql_query_parse_failed_fallback_summary"
	GuardHybridTwoCallFallback   = "hybrid_onecall_failed_used_2call_fallback"
	GuardHybridAllFallbacks      = "hybrid_failed_all_fallbacks"
)

// 父文档内容超过该 rune 数时视为"有足够上下文"，可豁免优质命中数下限
const parentContextMinRunes = 300

// GuardPolicy 证据充分性判定的阈值集合
type GuardPolicy struct {
	TopScoreMax     float64
	MinGoodHits     int
	GoodHitScoreMax float64
}

// Stats 统计最优距离与优质命中数
// 约定 results 已按距离升序排列。
func (p GuardPolicy) Stats(results []retrieval.ScoredParent) (topScore float64, goodHits int) {
	if len(results) == 0 {
		return 0, 0
	}
	topScore = results[0].Score
	for _, r := range results {
		if r.Score <= p.GoodHitScoreMax {
			goodHits++
		}
	}
	return topScore, goodHits
}

// HasParentContext 任一父文档内容足够长即认为上下文充分
func HasParentContext(results []retrieval.ScoredParent) bool {
	for _, r := range results {
		if r.Doc == nil {
			continue
		}
		if utf8.RuneCountInString(r.Doc.Content) > parentContextMinRunes {
			return true
		}
	}
	return false
}

func guardWithStats(reason string, topScore float64, goodHits int) Guard {
	ts := topScore
	gh := goodHits
	return Guard{Reason: reason, TopScore: &ts, GoodHits: &gh}
}
