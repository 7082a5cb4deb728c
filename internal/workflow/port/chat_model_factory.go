// Package port 声明链路层对外部能力的依赖接口
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 链路侧取用 ChatModel 的最小接口，
// 由 infrastructure/llm 的工厂实现，provider 为空表示默认渠道。
type ChatModelFactory interface {
	ChatModel(ctx context.Context, provider string) (model.BaseChatModel, error)
}
