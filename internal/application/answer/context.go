package answer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"deskmate-ai-api/internal/domain/entity"
	wfnode "deskmate-ai-api/internal/workflow/node"
)

// ContextBuilder 把检索到的父文档拼装成提示词上下文
// 三层长度控制：单文档截断、拼装时的总量截断、入模前的最终裁剪。
// 长度一律按 rune 计，避免多字节文本被截出半个字符。
type ContextBuilder struct {
	maxRunesPerDoc  int
	maxContextRunes int
	trimLimitRunes  int
}

const (
	defaultMaxRunesPerDoc  = 900
	defaultMaxContextRunes = 3500
	defaultTrimLimitRunes  = 12000
)

func NewContextBuilder(maxRunesPerDoc, maxContextRunes, trimLimitRunes int) *ContextBuilder {
	b := &ContextBuilder{
		maxRunesPerDoc:  maxRunesPerDoc,
		maxContextRunes: maxContextRunes,
		trimLimitRunes:  trimLimitRunes,
	}
	if b.maxRunesPerDoc <= 0 {
		b.maxRunesPerDoc = defaultMaxRunesPerDoc
	}
	if b.maxContextRunes <= 0 {
		b.maxContextRunes = defaultMaxContextRunes
	}
	if b.trimLimitRunes <= 0 {
		b.trimLimitRunes = defaultTrimLimitRunes
	}
	return b
}

// FormatDocs 渲染 [DOC i] source=... 区块并控制总量
func (b *ContextBuilder) FormatDocs(docs []*entity.ParentDocument) string {
	blocks := make([]string, 0, len(docs))
	total := 0

	for i, d := range docs {
		if d == nil {
			continue
		}
		src := d.Source()
		if src == "" {
			src = "unknown"
		}

		text := d.Content
		if utf8.RuneCountInString(text) > b.maxRunesPerDoc {
			text = rstrip(wfnode.TruncateByRunes(text, b.maxRunesPerDoc)) + "\n…[TRUNCATED]"
		}

		block := fmt.Sprintf("[DOC %d] source=%s\n%s", i+1, src, text)
		blockRunes := utf8.RuneCountInString(block)

		if total+blockRunes > b.maxContextRunes {
			remain := b.maxContextRunes - total
			if remain <= 0 {
				break
			}
			block = rstrip(wfnode.TruncateByRunes(block, remain)) + "\n…[CONTEXT TRUNCATED]"
			blocks = append(blocks, block)
			break
		}

		blocks = append(blocks, block)
		total += blockRunes + 2
	}

	return strings.Join(blocks, "\n\n")
}

// TrimContext 入模前的最终裁剪，尽量在 [DOC 边界断开
// 若边界落在限额一半以内则直接硬切，避免只剩下很少的内容。
func (b *ContextBuilder) TrimContext(context string) string {
	limit := b.trimLimitRunes
	if utf8.RuneCountInString(context) <= limit {
		return context
	}

	head := wfnode.TruncateByRunes(context, limit)
	cut := strings.LastIndex(head, "\n\n[DOC")
	if cut == -1 || float64(utf8.RuneCountInString(context[:cut])) < float64(limit)*0.5 {
		return head
	}
	return rstrip(context[:cut])
}

func rstrip(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
