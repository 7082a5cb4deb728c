package callback

import (
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
)

var registerOnce sync.Once

// Register 把模型观测 handler 挂进 Eino 全局回调。
// 进程内只注册一次，重复调用为空操作。
func Register() {
	registerOnce.Do(func() {
		h := cbtemplate.NewHandlerHelper().
			ChatModel(newChatModelCallbackHandler()).
			Handler()
		einocallbacks.AppendGlobalHandlers(h)
	})
}
