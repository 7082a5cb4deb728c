// Package entity 定义领域实体
package entity

// TableSchema 描述目标库中一张可查询表的结构
// 探查结果用于渲染注入 SQL 生成提示词的结构文本。
type TableSchema struct {
	Name        string         `json:"name"`
	Columns     []ColumnSchema `json:"columns"`
	ForeignKeys []ForeignKey   `json:"foreign_keys,omitempty"`
}

// ColumnSchema 描述表中一列的结构
// 约束标记互斥优先级：主键 > 唯一 > 普通索引。
type ColumnSchema struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	Nullable   bool   `json:"nullable"`
	IsPrimary  bool   `json:"is_primary,omitempty"`
	IsUnique   bool   `json:"is_unique,omitempty"`
	IsIndexed  bool   `json:"is_indexed,omitempty"`
	IsIdentity bool   `json:"is_identity,omitempty"`
}

// ForeignKey 外键引用关系，渲染为 JOIN 提示
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}
