package entity

// RowSet 只读查询的结果集
// Columns 保留游标返回的列顺序，Rows 为列名到值的映射。
// 降级摘要等按列序展示的场景依赖 Columns，不能依赖 map 的遍历顺序。
type RowSet struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Len 返回行数
func (rs *RowSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Truncate 截断到前 n 行，n 为负或超长时不变
func (rs *RowSet) Truncate(n int) {
	if rs == nil || n < 0 || n >= len(rs.Rows) {
		return
	}
	rs.Rows = rs.Rows[:n]
}
