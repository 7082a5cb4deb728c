package node

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ExtractJSONObject 从模型输出里截取第一个 JSON 值（对象或数组）。
// 模型偶尔会在 JSON 外包一层口语或代码围栏，这里做容错截取；
// 截不出合法 JSON 时原样返回（仅去掉首尾空白）。
func ExtractJSONObject(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return trimmed
	}

	candidate := sliceFirstJSONValue(trimmed)
	if startsWithJSONContainer(candidate) {
		return candidate
	}
	// 兜底：候选串整体可被 Decoder 消费到 EOF 才算数
	if decodesToEOF(candidate) {
		return candidate
	}
	return trimmed
}

// sliceFirstJSONValue 截取首个 '{' 或 '[' 到同类的最后一个闭合符
func sliceFirstJSONValue(raw string) string {
	open := strings.IndexAny(raw, "{[")
	if open < 0 {
		return raw
	}
	closer := "}"
	if raw[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(raw, closer)
	if end <= open {
		return raw
	}
	return raw[open : end+1]
}

func startsWithJSONContainer(s string) bool {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return false
	}
	d, ok := tok.(json.Delim)
	return ok && (d == '{' || d == '[')
}

func decodesToEOF(s string) bool {
	dec := json.NewDecoder(strings.NewReader(s))
	for {
		if _, err := dec.Token(); err != nil {
			return errors.Is(err, io.EOF)
		}
	}
}
