package model

// HybridOneCallInput 单次调用混合应答工作流的输入
// RowsJSON 是行结果的 JSON 文本，ParamsJSON 是查询参数的 JSON 文本。
type HybridOneCallInput struct {
	Question   string
	Query      string
	ParamsJSON string
	RowsJSON   string
	DocContext string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// HybridCombineInput 两段式混合应答工作流的输入
// DBSummary 是已生成的查询结果摘要文本。
type HybridCombineInput struct {
	Question   string
	DBSummary  string
	DocContext string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// HybridAnswer 混合应答结果
// 单次调用时 DBSummary 由模型生成，两段式时该字段为空，由上层回填。
type HybridAnswer struct {
	Speech    string `json:"speech"`
	DBSummary string `json:"db_summary,omitempty"`
	DocNotes  string `json:"doc_notes"`
	Answer    string `json:"answer"`
}
