package node

import "strings"

// responseFormatProbes 每组子串全部命中即视为供应商不支持结构化输出
var responseFormatProbes = [][]string{
	{"response_format"},
	{"json_schema"},
	{"response_schema"},
	{"failed to parse"},
	{"unknown parameter", "response"},
	{"invalid", "response"},
}

// IsResponseFormatUnsupportedError 判断错误是否来自供应商拒绝 response_format。
// 命中后链路会退回纯文本生成，再自行从输出中抽取 JSON。
func IsResponseFormatUnsupportedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, probe := range responseFormatProbes {
		hit := true
		for _, sub := range probe {
			if !strings.Contains(msg, sub) {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}
