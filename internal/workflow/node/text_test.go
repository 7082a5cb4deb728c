package node

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateByRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{name: "zero max empties", s: "abc", max: 0, want: ""},
		{name: "negative max empties", s: "abc", max: -1, want: ""},
		{name: "short passthrough", s: "abc", max: 5, want: "abc"},
		{name: "exact length passthrough", s: "abcde", max: 5, want: "abcde"},
		{name: "ascii cut", s: "abcdef", max: 3, want: "abc"},
		{name: "hangul cut on rune boundary", s: "가나다라마", max: 3, want: "가나다"},
		{name: "mixed width", s: "a가b나c", max: 4, want: "a가b나"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateByRunes(tt.s, tt.max))
		})
	}
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "response_format rejected", err: errors.New("400: response_format is not supported"), want: true},
		{name: "json_schema rejected", err: errors.New("json_schema mode unavailable for this model"), want: true},
		{name: "unknown parameter", err: errors.New(`unknown parameter: "response_format"`), want: true},
		{name: "invalid response field", err: errors.New("Invalid value for Response type"), want: true},
		{name: "response_schema variant", err: errors.New("response_schema must be an object"), want: true},
		{name: "parse failure", err: fmt.Errorf("call model: %w", errors.New("failed to parse structured output")), want: true},
		{name: "unrelated error", err: errors.New("connection reset by peer"), want: false},
		{name: "rate limit", err: errors.New("429 too many requests"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsResponseFormatUnsupportedError(tt.err))
		})
	}
}
