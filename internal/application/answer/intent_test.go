package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	wfmodel "deskmate-ai-api/internal/workflow/model"
)

func TestRuleIntent(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		wantIntent string
		wantReason string
		wantNil    bool
	}{
		{name: "single rune is too short", question: "뭐", wantIntent: wfmodel.IntentExplain, wantReason: "too_short"},
		{name: "whitespace trimmed before counting", question: "  아  ", wantIntent: wfmodel.IntentExplain, wantReason: "too_short"},
		{name: "command hint", question: "거실 불 좀 켜줘", wantIntent: wfmodel.IntentCommand, wantReason: "rule_match:켜줘"},
		{name: "explain hint", question: "이 설정이 뭐야", wantIntent: wfmodel.IntentExplain, wantReason: "rule_match:뭐야"},
		{name: "command hints win over explain hints", question: "원리 설명해줘", wantIntent: wfmodel.IntentCommand, wantReason: "rule_match:해줘"},
		{name: "no hint defers to model", question: "오늘 날씨 어때", wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RuleIntent(tt.question)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.wantIntent, got.Intent)
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}
