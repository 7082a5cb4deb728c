// Package relational 承载结构化查询的安全闸门与库表结构供给
package relational

import "strings"

// ValidateSelectOnly 校验模型生成的 SQL 是否为 SELECT 语句
// 只做前缀判断，更细的防护由只读执行器与参数绑定兜底。
func ValidateSelectOnly(sql string) (bool, string) {
	s := strings.ToLower(strings.TrimSpace(sql))
	if !strings.HasPrefix(s, "select ") {
		return false, "only SELECT is allowed"
	}
	return true, "ok"
}
