// Package entity 定义领域实体
package entity

import (
	"strings"
)

// ParentDocument 父文档实体
// 两级检索中的第二级：子块命中后按 doc_id 回取的完整文档。
// 以 JSON 形式存储在文档库中，ID 即存储键（不参与序列化）。
type ParentDocument struct {
	ID       string         `json:"-"`
	Content  string         `json:"page_content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewParentDocument 创建父文档
func NewParentDocument(id, content string, metadata map[string]any) *ParentDocument {
	return &ParentDocument{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	}
}

// Source 返回元数据中的来源标识，缺失时为空串
func (d *ParentDocument) Source() string {
	return d.metaString("source")
}

// Domain 返回元数据中的领域标签，缺失时为空串
func (d *ParentDocument) Domain() string {
	return d.metaString("domain")
}

func (d *ParentDocument) metaString(key string) string {
	if d == nil || d.Metadata == nil {
		return ""
	}
	v, ok := d.Metadata[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Preview 返回正文前 maxRunes 个字符，用于来源预览
func (d *ParentDocument) Preview(maxRunes int) string {
	if d == nil || maxRunes <= 0 {
		return ""
	}
	runes := []rune(d.Content)
	if len(runes) <= maxRunes {
		return d.Content
	}
	return string(runes[:maxRunes])
}
