package model

// 意图取值
const (
	IntentCommand = "command"
	IntentExplain = "explain"
)

// IntentInput 意图分类工作流的输入
type IntentInput struct {
	Question string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// IntentDecision 意图分类结果
// Intent 只会是 command 或 explain，Reason 记录判定依据（规则命中或模型给出）。
type IntentDecision struct {
	Intent string `json:"intent"`
	Reason string `json:"reason,omitempty"`
}
