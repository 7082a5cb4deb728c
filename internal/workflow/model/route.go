package model

// DBRouteInput DB 路由判定工作流的输入
type DBRouteInput struct {
	Question string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// DBRouteDecision 路由判定结果
// IsDBQuestion 为 true 表示需要查询关系库才能回答。
type DBRouteDecision struct {
	IsDBQuestion bool   `json:"is_db_question"`
	Reason       string `json:"reason,omitempty"`
}
