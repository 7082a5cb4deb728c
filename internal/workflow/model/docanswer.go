package model

// DocAnswerInput 文档问答工作流的输入
// Context 是裁剪后的 [DOC N] 区块文本。
type DocAnswerInput struct {
	Question string
	Context  string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}
