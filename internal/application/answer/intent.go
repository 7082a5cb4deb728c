package answer

import (
	"strings"
	"unicode/utf8"

	wfmodel "deskmate-ai-api/internal/workflow/model"
)

// 命中即定性的表层线索，按优先级排列
var commandHints = []string{
	"해줘", "해주세요", "해봐", "해봐줘",
	"켜줘", "꺼줘", "열어줘", "닫아줘",
	"재생해줘", "틀어줘", "저장해줘", "복사해줘",
	"이동해줘", "바꿔줘", "변경해줘", "실행해줘",
	"눌러줘", "검색해줘",
}

var explainHints = []string{
	"뭐야", "무슨", "설명", "원리", "왜",
	"어떻게", "차이", "정의", "의미", "개념",
}

// RuleIntent 基于关键词的意图预判
// 命中返回判定结果，规则无法定性时返回 nil，由调用方交给模型分类。
func RuleIntent(question string) *wfmodel.IntentDecision {
	q := strings.TrimSpace(question)
	if utf8.RuneCountInString(q) <= 2 {
		return &wfmodel.IntentDecision{Intent: wfmodel.IntentExplain, Reason: "too_short"}
	}
	for _, pat := range commandHints {
		if strings.Contains(q, pat) {
			return &wfmodel.IntentDecision{Intent: wfmodel.IntentCommand, Reason: "rule_match:" + pat}
		}
	}
	for _, pat := range explainHints {
		if strings.Contains(q, pat) {
			return &wfmodel.IntentDecision{Intent: wfmodel.IntentExplain, Reason: "rule_match:" + pat}
		}
	}
	return nil
}
