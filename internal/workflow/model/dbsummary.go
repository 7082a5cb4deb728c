package model

// DBSummaryInput 查询结果摘要工作流的输入
type DBSummaryInput struct {
	Question   string
	Query      string
	ParamsJSON string
	RowsJSON   string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// DBSummaryResult 摘要结果
// Summary 为多行可读文本，Speech 是一句话播报，可为空。
type DBSummaryResult struct {
	Summary string `json:"summary"`
	Speech  string `json:"speech,omitempty"`
}
