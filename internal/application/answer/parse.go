package answer

import (
	"encoding/json"
	"fmt"

	wfmodel "deskmate-ai-api/internal/workflow/model"
	wfnode "deskmate-ai-api/internal/workflow/node"
)

// 模型结构化输出的解析层。
// 解析用的中间结构全部使用指针字段，借此区分“字段缺失”和“零值”，
// 必填字段缺失一律返回错误，由调用方决定走哪一级兜底。

type dbRouteWire struct {
	IsDBQuestion *bool   `json:"is_db_question"`
	Reason       *string `json:"reason"`
}

// ParseDBRoute 解析路由判定输出，is_db_question 必填
func ParseDBRoute(text string) (*wfmodel.DBRouteDecision, error) {
	var w dbRouteWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("db_route decode: %w", err)
	}
	if w.IsDBQuestion == nil {
		return nil, fmt.Errorf("db_route missing field: is_db_question")
	}
	out := &wfmodel.DBRouteDecision{IsDBQuestion: *w.IsDBQuestion}
	if w.Reason != nil {
		out.Reason = *w.Reason
	}
	return out, nil
}

type intentWire struct {
	Intent *string `json:"intent"`
	Reason *string `json:"reason"`
}

// ParseIntent 解析意图分类输出，intent 和 reason 均必填
// intent 只接受 command / explain 两个取值。
func ParseIntent(text string) (*wfmodel.IntentDecision, error) {
	var w intentWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("intent decode: %w", err)
	}
	if w.Intent == nil {
		return nil, fmt.Errorf("intent missing field: intent")
	}
	if w.Reason == nil {
		return nil, fmt.Errorf("intent missing field: reason")
	}
	if *w.Intent != wfmodel.IntentCommand && *w.Intent != wfmodel.IntentExplain {
		return nil, fmt.Errorf("intent invalid value: %q", *w.Intent)
	}
	return &wfmodel.IntentDecision{Intent: *w.Intent, Reason: *w.Reason}, nil
}

type sqlQueryWire struct {
	Type   *string         `json:"type"`
	Speech *string         `json:"speech"`
	SQL    *string         `json:"sql"`
	Params *map[string]any `json:"params"`
}

// ParseSQLQueryPlan 解析 SQL 生成输出，sql 必填，params 缺省为空表
func ParseSQLQueryPlan(text string) (*wfmodel.SQLQueryPlan, error) {
	var w sqlQueryWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("sql_query decode: %w", err)
	}
	if w.Type != nil && *w.Type != "sql_query" {
		return nil, fmt.Errorf("sql_query unexpected type: %q", *w.Type)
	}
	if w.SQL == nil {
		return nil, fmt.Errorf("sql_query missing field: sql")
	}
	out := &wfmodel.SQLQueryPlan{SQL: *w.SQL, Params: map[string]any{}}
	if w.Speech != nil {
		out.Speech = *w.Speech
	}
	if w.Params != nil && *w.Params != nil {
		out.Params = *w.Params
	}
	return out, nil
}

type commandActionWire struct {
	Name *string         `json:"name"`
	Args *map[string]any `json:"args"`
}

type commandWire struct {
	Type    *string             `json:"type"`
	Speech  *string             `json:"speech"`
	Actions []commandActionWire `json:"actions"`
}

// ParseCommandPlan 解析命令生成输出，speech 必填，每条动作的 name 必填
func ParseCommandPlan(text string) (*wfmodel.CommandPlan, error) {
	var w commandWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("command decode: %w", err)
	}
	if w.Type != nil && *w.Type != "command" {
		return nil, fmt.Errorf("command unexpected type: %q", *w.Type)
	}
	if w.Speech == nil {
		return nil, fmt.Errorf("command missing field: speech")
	}
	out := &wfmodel.CommandPlan{Speech: *w.Speech, Actions: make([]wfmodel.CommandAction, 0, len(w.Actions))}
	for i, a := range w.Actions {
		if a.Name == nil {
			return nil, fmt.Errorf("command action[%d] missing field: name", i)
		}
		act := wfmodel.CommandAction{Name: *a.Name, Args: map[string]any{}}
		if a.Args != nil && *a.Args != nil {
			act.Args = *a.Args
		}
		out.Actions = append(out.Actions, act)
	}
	return out, nil
}

type hybridWire struct {
	Type      *string `json:"type"`
	Speech    *string `json:"speech"`
	DBSummary *string `json:"db_summary"`
	DocNotes  *string `json:"doc_notes"`
	Answer    *string `json:"answer"`
}

func (w *hybridWire) validateCommon() error {
	if w.Type != nil && *w.Type != "hybrid_answer" {
		return fmt.Errorf("hybrid_answer unexpected type: %q", *w.Type)
	}
	if w.Speech == nil {
		return fmt.Errorf("hybrid_answer missing field: speech")
	}
	if w.DocNotes == nil {
		return fmt.Errorf("hybrid_answer missing field: doc_notes")
	}
	if w.Answer == nil {
		return fmt.Errorf("hybrid_answer missing field: answer")
	}
	return nil
}

// ParseHybridAnswer 解析单次调用的混合应答，四个文本字段全部必填
func ParseHybridAnswer(text string) (*wfmodel.HybridAnswer, error) {
	var w hybridWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("hybrid_answer decode: %w", err)
	}
	if err := w.validateCommon(); err != nil {
		return nil, err
	}
	if w.DBSummary == nil {
		return nil, fmt.Errorf("hybrid_answer missing field: db_summary")
	}
	return &wfmodel.HybridAnswer{
		Speech:    *w.Speech,
		DBSummary: *w.DBSummary,
		DocNotes:  *w.DocNotes,
		Answer:    *w.Answer,
	}, nil
}

// ParseHybridCombined 解析两段式合成的混合应答
// 摘要文本由上层已有，这里 db_summary 可缺省。
func ParseHybridCombined(text string) (*wfmodel.HybridAnswer, error) {
	var w hybridWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("hybrid_answer decode: %w", err)
	}
	if err := w.validateCommon(); err != nil {
		return nil, err
	}
	out := &wfmodel.HybridAnswer{
		Speech:   *w.Speech,
		DocNotes: *w.DocNotes,
		Answer:   *w.Answer,
	}
	if w.DBSummary != nil {
		out.DBSummary = *w.DBSummary
	}
	return out, nil
}

type dbSummaryWire struct {
	Type    *string `json:"type"`
	Summary *string `json:"summary"`
	Speech  *string `json:"speech"`
}

// ParseDBSummary 解析查询结果摘要输出，summary 必填
func ParseDBSummary(text string) (*wfmodel.DBSummaryResult, error) {
	var w dbSummaryWire
	if err := json.Unmarshal([]byte(wfnode.ExtractJSONObject(text)), &w); err != nil {
		return nil, fmt.Errorf("db_summary decode: %w", err)
	}
	if w.Type != nil && *w.Type != "db_summary" {
		return nil, fmt.Errorf("db_summary unexpected type: %q", *w.Type)
	}
	if w.Summary == nil {
		return nil, fmt.Errorf("db_summary missing field: summary")
	}
	out := &wfmodel.DBSummaryResult{Summary: *w.Summary}
	if w.Speech != nil {
		out.Speech = *w.Speech
	}
	return out, nil
}
