// Package command 维护可执行命令白名单并校验模型生成的动作
package command

import (
	"fmt"
	"sort"

	wfmodel "deskmate-ai-api/internal/workflow/model"
)

// Spec 单条命令的执行约束，只登记必填参数
type Spec struct {
	RequiredArgs []string
}

// Registry 命令白名单
// 未登记的命令一律拒绝，新增命令必须先在这里注册。
type Registry struct {
	allowed map[string]Spec
}

// NewRegistry 创建内置白名单
// 可选参数（如 ShowNotification 的 title、Navigate 的 params）不做校验。
func NewRegistry() *Registry {
	return &Registry{allowed: map[string]Spec{
		"OpenUrl":          {RequiredArgs: []string{"url"}},
		"ShowNotification": {RequiredArgs: []string{"message"}},
		"CopyToClipboard":  {RequiredArgs: []string{"text"}},
		"SaveLocalNote":    {RequiredArgs: []string{"content"}},
		"SearchLocalDocs":  {RequiredArgs: []string{"query"}},
		"SetAppTheme":      {RequiredArgs: []string{"theme"}},
		"PlaySound":        {RequiredArgs: []string{"soundId"}},
		"Navigate":         {RequiredArgs: []string{"route"}},
		"ConfirmAction":    {RequiredArgs: []string{"message"}},
	}}
}

// Register 登记新命令，已存在时覆盖
func (r *Registry) Register(name string, requiredArgs ...string) {
	r.allowed[name] = Spec{RequiredArgs: requiredArgs}
}

// Validate 校验动作列表是否全部可执行
// 逐条检查命令是否登记、必填参数是否齐全，首个违规即返回原因。
func (r *Registry) Validate(actions []wfmodel.CommandAction) (bool, string) {
	for _, action := range actions {
		spec, ok := r.allowed[action.Name]
		if !ok {
			return false, fmt.Sprintf("허용되지 않은 명령: %s", action.Name)
		}
		for _, arg := range spec.RequiredArgs {
			if _, present := action.Args[arg]; !present {
				return false, fmt.Sprintf("명령 '%s'에 필요한 인자 누락: %s", action.Name, arg)
			}
		}
	}
	return true, "ok"
}

// Names 返回已登记命令名，字典序
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.allowed))
	for name := range r.allowed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
