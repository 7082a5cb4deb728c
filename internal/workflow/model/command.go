package model

// CommandInput 命令生成工作流的输入
// Context 是与问题相关的文档区块，供模型判断命令参数。
type CommandInput struct {
	Question string
	Context  string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// CommandAction 单条待执行动作
type CommandAction struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// CommandPlan 模型生成的命令方案
// Actions 可能为空，表示模型认为无需执行任何动作。
type CommandPlan struct {
	Speech  string          `json:"speech"`
	Actions []CommandAction `json:"actions"`
}
