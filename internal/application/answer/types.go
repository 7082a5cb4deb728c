// Package answer 实现三类问答操作的编排：
// 文档问答（chat）、白名单命令生成（command）、DB + 文档混合问答（ask）。
package answer

import (
	wfmodel "deskmate-ai-api/internal/workflow/model"
)

// 应答信封的 type 字段取值
const (
	TypeRagAnswer    = "rag_answer"
	TypeCommand      = "command"
	TypeHybridAnswer = "hybrid_answer"
)

// Source 单条检索证据
type Source struct {
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// Guard 守卫判定
// TopScore 与 GoodHits 仅在做过检索统计的分支出现。
type Guard struct {
	Reason   string   `json:"reason"`
	TopScore *float64 `json:"top_score,omitempty"`
	GoodHits *int     `json:"good_hits,omitempty"`
	Detail   string   `json:"detail,omitempty"`
}

// ConfidenceDetails 置信度构成明细
type ConfidenceDetails struct {
	Base  float64 `json:"base"`
	Bonus float64 `json:"bonus"`
}

// Confidence 检索置信度
type Confidence struct {
	Level   string            `json:"level"`
	Score   float64           `json:"score"`
	Details ConfidenceDetails `json:"details"`
}

// ChatAnswer 文档问答信封
// Sources 始终出现（无结果时为空数组），Confidence 在无结果分支缺席。
type ChatAnswer struct {
	Type       string      `json:"type"`
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Sources    []Source    `json:"sources"`
	Guard      Guard       `json:"guard"`
	Confidence *Confidence `json:"confidence,omitempty"`
}

// CommandAnswer 命令信封
// Confidence 始终出现（无结果时为归零值），Sources 在无结果分支缺席。
type CommandAnswer struct {
	Type       string                  `json:"type"`
	Speech     string                  `json:"speech"`
	Actions    []wfmodel.CommandAction `json:"actions"`
	Confidence Confidence              `json:"confidence"`
	Sources    []Source                `json:"sources,omitempty"`
	Guard      Guard                   `json:"guard"`
}

// HybridResult 混合问答信封
// SQL/Params/Rows/Sources 在所有分支均出现，便于调用方核对降级深度与截断行数。
type HybridResult struct {
	Type      string           `json:"type"`
	Question  string           `json:"question"`
	Speech    string           `json:"speech"`
	DBSummary string           `json:"db_summary"`
	DocNotes  string           `json:"doc_notes"`
	Answer    string           `json:"answer"`
	SQL       string           `json:"sql"`
	Params    map[string]any   `json:"params"`
	Rows      []map[string]any `json:"rows"`
	Sources   []Source         `json:"sources"`
	Guard     Guard            `json:"guard"`
}

// AskResult ask 操作的结果，三种信封恰有一个非空
type AskResult struct {
	Hybrid  *HybridResult  `json:"hybrid,omitempty"`
	Chat    *ChatAnswer    `json:"chat,omitempty"`
	Command *CommandAnswer `json:"command,omitempty"`
}

// Envelope 返回实际应答体，供 HTTP 层直接序列化
func (r *AskResult) Envelope() any {
	switch {
	case r == nil:
		return nil
	case r.Hybrid != nil:
		return r.Hybrid
	case r.Chat != nil:
		return r.Chat
	case r.Command != nil:
		return r.Command
	default:
		return nil
	}
}
