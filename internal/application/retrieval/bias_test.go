package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeTrackingQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "korean shipping keyword", query: "운송장 번호 알려줘", want: true},
		{name: "delivery keyword", query: "내 택배 어디쯤이야", want: true},
		{name: "carrier name", query: "DHL로 보낸 물건 왔어?", want: true},
		{name: "english keyword", query: "where is my tracking number", want: true},
		{name: "tracking code pattern", query: "APX3002345386815CN 조회", want: true},
		{name: "mixed alnum heuristic", query: "ABC1234567 확인해줘", want: true},
		{name: "plain question", query: "점수 계산은 어떤 방식이야", want: false},
		{name: "digits only", query: "12345678901234", want: false},
		{name: "letters only", query: "hello world from assistant", want: false},
		{name: "blank", query: "   ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeTrackingQuery(tt.query))
		})
	}
}
