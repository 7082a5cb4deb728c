package handler

import (
	"fmt"
	"strings"

	"deskmate-ai-api/internal/config"
)

// 请求可指定的 provider/model 字段长度上限，超长直接拒绝，不透传下游。
const (
	maxProviderLen = 32
	maxModelLen    = 64
)

// resolveProviderModel 解析请求指定的 LLM Provider 与 Model。
// 两者均可缺省：provider 回退配置默认值，model 回退 provider 配置的默认模型。
func resolveProviderModel(cfg *config.Config, provider, model string) (string, string, error) {
	if cfg == nil {
		return "", "", fmt.Errorf("server config not configured")
	}

	p, pc, err := resolveProvider(cfg, provider)
	if err != nil {
		return "", "", err
	}

	m := firstNonEmpty(model, pc.Model)
	if len(m) > maxModelLen {
		return "", "", fmt.Errorf("llm model too long")
	}
	return p, m, nil
}

func resolveProvider(cfg *config.Config, provider string) (string, config.ProviderConfig, error) {
	p := firstNonEmpty(provider, cfg.LLM.DefaultProvider)
	switch {
	case p == "":
		return "", config.ProviderConfig{}, fmt.Errorf("llm provider not specified")
	case len(p) > maxProviderLen:
		return "", config.ProviderConfig{}, fmt.Errorf("llm provider too long")
	}
	pc, ok := cfg.LLM.Providers[p]
	if !ok {
		return "", config.ProviderConfig{}, fmt.Errorf("llm provider not found: %s", p)
	}
	return p, pc, nil
}

// firstNonEmpty 返回去除首尾空白后第一个非空的值。
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
