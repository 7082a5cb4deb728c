package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "clean object", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "clean array", in: `[1, 2, 3]`, want: `[1, 2, 3]`},
		{
			name: "fenced json",
			in:   "```json\n{\"speech\": \"안녕하세요\"}\n```",
			want: `{"speech": "안녕하세요"}`,
		},
		{
			name: "leading prose stripped",
			in:   "알겠습니다. 결과는 다음과 같습니다: {\"ok\": true}",
			want: `{"ok": true}`,
		},
		{
			name: "trailing prose stripped",
			in:   `{"ok": true} 이상입니다.`,
			want: `{"ok": true}`,
		},
		{
			name: "object preferred when it comes first",
			in:   `{"items": [1, 2]} [3]`,
			want: `{"items": [1, 2]}`,
		},
		{
			name: "array when no object",
			in:   "before [1, 2] after",
			want: "[1, 2]",
		},
		{
			name: "nested braces kept to last close",
			in:   `x {"a": {"b": 1}} y`,
			want: `{"a": {"b": 1}}`,
		},
		{name: "plain text returned as is", in: "그냥 문장입니다", want: "그냥 문장입니다"},
		{name: "whitespace trimmed", in: "  {\"a\":1}  ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}
