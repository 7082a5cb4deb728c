package model

// SQLQueryInput SQL 生成工作流的输入
// SchemaContext 是已渲染好的库表结构文本，MaxLimit 写入提示词约束行数上限。
type SQLQueryInput struct {
	Question      string
	SchemaContext string
	MaxLimit      int

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// SQLQueryPlan 模型生成的查询计划
// SQL 使用 :name 形式的命名参数，对应值放在 Params 中。
type SQLQueryPlan struct {
	Speech string         `json:"speech"`
	SQL    string         `json:"sql"`
	Params map[string]any `json:"params"`
}
