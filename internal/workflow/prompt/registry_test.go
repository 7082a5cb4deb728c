package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ChatTemplate_AllKnownIDs(t *testing.T) {
	r := NewRegistry()

	ids := []PromptID{
		PromptDBRouteV1,
		PromptIntentV1,
		PromptSQLQueryV1,
		PromptDocAnswerV1,
		PromptCommandGenV1,
		PromptHybridOneCallV1,
		PromptHybridCombineV1,
		PromptDBSummaryV1,
	}

	for _, id := range ids {
		t.Run(string(id), func(t *testing.T) {
			tpl, err := r.ChatTemplate(id)
			require.NoError(t, err)
			require.NotNil(t, tpl)
		})
	}
}

func TestRegistry_ChatTemplate_UnknownID(t *testing.T) {
	r := NewRegistry()

	tpl, err := r.ChatTemplate(PromptID("no_such_prompt"))
	require.Error(t, err)
	assert.Nil(t, tpl)
	assert.Contains(t, err.Error(), "unknown prompt id: no_such_prompt")
}

func TestRegistry_ChatTemplate_NilRegistry(t *testing.T) {
	var r *Registry

	tpl, err := r.ChatTemplate(PromptDBRouteV1)
	require.Error(t, err)
	assert.Nil(t, tpl)
	assert.Contains(t, err.Error(), "prompt registry is nil")
}

func TestRegistry_ChatTemplate_CachesParsedTemplate(t *testing.T) {
	r := NewRegistry()

	first, err := r.ChatTemplate(PromptIntentV1)
	require.NoError(t, err)
	second, err := r.ChatTemplate(PromptIntentV1)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistry_ChatTemplate_ReturnsCachedEntry(t *testing.T) {
	r := NewRegistry()

	sentinel, err := r.ChatTemplate(PromptDBSummaryV1)
	require.NoError(t, err)

	// 缓存命中时不再读 embed 文件，直接返回已有模板
	r.cache[PromptDBRouteV1] = sentinel
	got, err := r.ChatTemplate(PromptDBRouteV1)
	require.NoError(t, err)
	assert.Same(t, sentinel, got)
}

func TestRegistry_Format_DBRoute(t *testing.T) {
	r := NewRegistry()

	tpl, err := r.ChatTemplate(PromptDBRouteV1)
	require.NoError(t, err)

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"question": "현재 랭킹 top 5 보여줘",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "is_db_question")
	// 模板中的 {{ }} 转义在渲染后还原成字面大括号
	assert.Contains(t, msgs[0].Content, "{")
	assert.NotContains(t, msgs[0].Content, "{{")

	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, "현재 랭킹 top 5 보여줘", msgs[1].Content)
}

func TestRegistry_Format_DocAnswer(t *testing.T) {
	r := NewRegistry()

	tpl, err := r.ChatTemplate(PromptDocAnswerV1)
	require.NoError(t, err)

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"context":  "[guide.md] 점수는 콤보에 비례한다.",
		"question": "점수 계산 방식 알려줘",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	user := msgs[1].Content
	assert.Contains(t, user, "[CONTEXT]")
	assert.Contains(t, user, "점수는 콤보에 비례한다")
	assert.Contains(t, user, "[QUESTION]")
	assert.Contains(t, user, "점수 계산 방식 알려줘")
}

func TestResolvePromptFiles(t *testing.T) {
	system, user, err := templatePaths(PromptHybridOneCallV1)
	require.NoError(t, err)
	assert.Equal(t, "templates/hybrid_onecall_v1.system.txt", system)
	assert.Equal(t, "templates/hybrid_onecall_v1.user.txt", user)

	_, _, err = templatePaths(PromptID("ghost"))
	require.Error(t, err)
}

func TestReadEmbeddedText(t *testing.T) {
	text, err := readTemplate("templates/db_route_v1.user.txt")
	require.NoError(t, err)
	assert.Equal(t, "{question}", text)
	assert.False(t, strings.HasSuffix(text, "\n"))

	_, err = readTemplate("templates/missing.txt")
	require.Error(t, err)
}
