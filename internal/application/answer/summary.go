package answer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"deskmate-ai-api/internal/domain/entity"
)

// 具名查询标识，命中时降级摘要走专用模板
const (
	queryTopScores           = "GetTopScores"
	queryTopScoresByModeDays = "GetTopScoresByModeAndDays"
	queryUserRecentScores    = "GetUserRecentScores"
	queryUserScoreSummary    = "GetUserScoreSummary"
)

// BuildFallbackSummary 规则生成的查询结果摘要，LLM 摘要失败时兜底
// 只依赖行数据本身，不做任何推断，保证永不失败。
func BuildFallbackSummary(question, query string, params map[string]any, rows *entity.RowSet) string {
	if rows.Len() == 0 {
		return "조회 결과가 없습니다."
	}

	switch query {
	case queryTopScores, queryTopScoresByModeDays:
		return rankingSummary(params, rows)
	case queryUserRecentScores:
		return recentScoresSummary(params, rows)
	case queryUserScoreSummary:
		return scoreAggregateSummary(params, rows)
	default:
		return genericSummary(rows)
	}
}

func rankingSummary(params map[string]any, rows *entity.RowSet) string {
	limit := strconv.Itoa(rows.Len())
	if v, ok := params["limit"]; ok && v != nil {
		limit = fmt.Sprintf("%v", v)
	}

	lines := []string{fmt.Sprintf("랭킹 TOP %s (요약 생성 실패로 원본 기반 표시)", limit)}
	for i, r := range rows.Rows {
		lines = append(lines, fmt.Sprintf("%d) %s - %s (%s) / %s",
			i+1, fmtValue(r["username"]), fmtValue(r["score"]), fmtValue(r["mode"]), fmtValue(r["created_at"])))
	}
	return strings.Join(lines, "\n")
}

func recentScoresSummary(params map[string]any, rows *entity.RowSet) string {
	username := stringOr(rows.Rows[0]["username"], params["username"], "user")

	lines := []string{fmt.Sprintf("%s 최근 점수 (요약 생성 실패로 원본 기반 표시)", username)}
	for i, r := range rows.Rows {
		lines = append(lines, fmt.Sprintf("%d) %s (%s) / %s",
			i+1, fmtValue(r["score"]), fmtValue(r["mode"]), fmtValue(r["created_at"])))
	}
	return strings.Join(lines, "\n")
}

func scoreAggregateSummary(params map[string]any, rows *entity.RowSet) string {
	r := rows.Rows[0]
	username := stringOr(r["username"], params["username"], "user")
	return fmt.Sprintf("%s 점수 요약 (요약 생성 실패로 원본 기반 표시)\n- 플레이 수: %s\n- 평균 점수: %s\n- 최고 점수: %s",
		username, fmtValue(r["games"]), fmtValue(r["avg_score"]), fmtValue(r["best_score"]))
}

// genericSummary 未知查询的兜底：取前 5 个列名，逐行展示键值
// 列序来自结果集游标，结果集未携带列序时退化为字典序。
func genericSummary(rows *entity.RowSet) string {
	keys := rows.Columns
	if len(keys) == 0 {
		for k := range rows.Rows[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	if len(keys) > 5 {
		keys = keys[:5]
	}

	lines := []string{fmt.Sprintf("조회 결과 %d건 (요약 생성 실패로 일부 키 표시)", rows.Len())}
	shown := rows.Rows
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for i, r := range shown {
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, fmtValue(r[k])))
		}
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, strings.Join(parts, ", ")))
	}
	return strings.Join(lines, "\n")
}

func fmtValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%v", v)
}

func stringOr(vals ...any) string {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s := fmt.Sprintf("%v", v); s != "" {
			return s
		}
	}
	return ""
}
