// Package prompt 管理链路用到的提示词模板。
// 模板以 system/user 成对的文本文件 embed 进二进制，按 PromptID 取用。
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

// PromptID 模板标识，取值与 templates/ 下的文件名前缀一致
type PromptID string

const (
	PromptDBRouteV1       PromptID = "db_route_v1"
	PromptIntentV1        PromptID = "intent_classify_v1"
	PromptSQLQueryV1      PromptID = "sql_query_v1"
	PromptDocAnswerV1     PromptID = "doc_answer_v1"
	PromptCommandGenV1    PromptID = "command_gen_v1"
	PromptHybridOneCallV1 PromptID = "hybrid_onecall_v1"
	PromptHybridCombineV1 PromptID = "hybrid_combine_v1"
	PromptDBSummaryV1     PromptID = "db_summary_v1"
)

var knownPrompts = map[PromptID]bool{
	PromptDBRouteV1:       true,
	PromptIntentV1:        true,
	PromptSQLQueryV1:      true,
	PromptDocAnswerV1:     true,
	PromptCommandGenV1:    true,
	PromptHybridOneCallV1: true,
	PromptHybridCombineV1: true,
	PromptDBSummaryV1:     true,
}

// Registry 模板注册表，解析结果进程内缓存
type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{cache: make(map[PromptID]einoprompt.ChatTemplate)}
}

// ChatTemplate 返回指定模板，首次取用时从 embed 文件装配
func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}
	if tpl, ok := r.lookup(id); ok {
		return tpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}
	tpl, err := loadTemplate(id)
	if err != nil {
		return nil, err
	}
	r.cache[id] = tpl
	return tpl, nil
}

func (r *Registry) lookup(id PromptID) (einoprompt.ChatTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.cache[id]
	return tpl, ok
}

// loadTemplate 读 system/user 两段文本并装配成 FString ChatTemplate
func loadTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	systemPath, userPath, err := templatePaths(id)
	if err != nil {
		return nil, err
	}
	system, err := readTemplate(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readTemplate(userPath)
	if err != nil {
		return nil, err
	}
	return einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	), nil
}

func templatePaths(id PromptID) (systemFile string, userFile string, err error) {
	if !knownPrompts[id] {
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
	base := "templates/" + string(id)
	return base + ".system.txt", base + ".user.txt", nil
}

func readTemplate(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
