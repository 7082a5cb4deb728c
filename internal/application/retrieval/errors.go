package retrieval

import (
	"errors"
	"fmt"
)

// ErrVectorDisabled 表示向量栈未配置（Milvus、Embedder 或文档库缺失），
// 调用方据此降级为“无结果”回答而不是报错。
var ErrVectorDisabled = errors.New("vector features are not configured")

// ErrInvalidInput 归类入参校验失败，HTTP 层据此回 400 而不是 500。
var ErrInvalidInput = errors.New("invalid retrieval input")

// inputError 带具体提示语，errors.Is 仍按 ErrInvalidInput 归类
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidInputf(format string, args ...any) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}
