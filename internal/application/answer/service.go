package answer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"

	"deskmate-ai-api/internal/application/relational"
	"deskmate-ai-api/internal/application/retrieval"
	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/domain/entity"
	"deskmate-ai-api/internal/domain/repository"
	"deskmate-ai-api/internal/workflow/chain"
	wfmodel "deskmate-ai-api/internal/workflow/model"
	workflowport "deskmate-ai-api/internal/workflow/port"
	"deskmate-ai-api/pkg/logger"
	"deskmate-ai-api/pkg/metrics"
)

// 面向用户的固定话术
const (
	msgNoEvidence           = "문서에서 근거를 찾지 못했습니다."
	msgWeakEvidence         = "문서에서 충분한 근거를 찾지 못했습니다."
	msgNoCommandFound       = "실행 가능한 명령을 찾지 못했습니다."
	msgLowCommandConfidence = "확신이 부족하여 명령을 실행할 수 없습니다."
	msgCommandParseFailed   = "명령을 해석하지 못했습니다."
	msgCommandNotAllowed    = "허용되지 않은 명령입니다."
	msgQueryNotAllowed      = "요청하신 쿼리는 실행할 수 없습니다."
	msgSelectOnlyAllowed    = "SELECT 쿼리만 허용됩니다."
	msgDBExecuteError       = "DB 조회 중 오류가 발생했습니다."
	msgDBResultFetched      = "요청하신 정보를 조회했습니다."
	msgNoDocEvidence        = "관련 문서 근거 없음"
)

// fallbackSafeSQL SQL 生成解析失败时执行的保底查询
// 只读取演示库的 users/scores 两张表，不带任何外部输入。
const fallbackSafeSQL = `SELECT u.username, s.score, s.mode, s.created_at
FROM scores s
JOIN users u ON u.user_id = s.user_id
ORDER BY s.score DESC
LIMIT 10`

// Retriever 文档检索入口
type Retriever interface {
	Search(ctx context.Context, query string) ([]retrieval.ScoredParent, error)
}

// SchemaContextProvider 提供注入提示词的库表结构文本
type SchemaContextProvider interface {
	SchemaContext(ctx context.Context) (string, error)
}

// CommandGate 命令白名单闸门
type CommandGate interface {
	Validate(actions []wfmodel.CommandAction) (bool, string)
}

// Chain 工作流调用入口，具体链以各自的输入类型实现
type Chain[In any] interface {
	Invoke(ctx context.Context, in In) (*schema.Message, error)
}

// Chains 编排所需的全部工作流链
type Chains struct {
	DBRoute       Chain[*wfmodel.DBRouteInput]
	Intent        Chain[*wfmodel.IntentInput]
	SQLQuery      Chain[*wfmodel.SQLQueryInput]
	DocAnswer     Chain[*wfmodel.DocAnswerInput]
	Command       Chain[*wfmodel.CommandInput]
	HybridOneCall Chain[*wfmodel.HybridOneCallInput]
	HybridCombine Chain[*wfmodel.HybridCombineInput]
	DBSummary     Chain[*wfmodel.DBSummaryInput]
}

func NewChains(factory workflowport.ChatModelFactory) *Chains {
	return &Chains{
		DBRoute:       chain.NewDBRouteChain(factory),
		Intent:        chain.NewIntentChain(factory),
		SQLQuery:      chain.NewSQLQueryChain(factory),
		DocAnswer:     chain.NewDocAnswerChain(factory),
		Command:       chain.NewCommandChain(factory),
		HybridOneCall: chain.NewHybridOneCallChain(factory),
		HybridCombine: chain.NewHybridCombineChain(factory),
		DBSummary:     chain.NewDBSummaryChain(factory),
	}
}

// Options 单次请求的模型参数覆盖
type Options struct {
	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// Service 问答编排服务
// 三个入口共享同一套检索守卫与置信度口径：
// Chat 走文档问答，Command 走白名单命令生成，Ask 先判 DB 路由再分流。
type Service struct {
	retriever      Retriever
	executor       repository.QueryExecutor
	schemaProvider SchemaContextProvider
	gate           CommandGate
	chains         *Chains

	guard      GuardPolicy
	scorer     *ConfidenceScorer
	contexts   *ContextBuilder
	maxDBLimit int
}

func NewService(
	cfg *config.Config,
	retriever Retriever,
	executor repository.QueryExecutor,
	schemaProvider SchemaContextProvider,
	gate CommandGate,
	chains *Chains,
) *Service {
	return &Service{
		retriever:      retriever,
		executor:       executor,
		schemaProvider: schemaProvider,
		gate:           gate,
		chains:         chains,
		guard: GuardPolicy{
			TopScoreMax:     cfg.Guard.TopScoreMax,
			MinGoodHits:     cfg.Guard.MinGoodHits,
			GoodHitScoreMax: cfg.Guard.GoodHitScoreMax,
		},
		scorer:     NewConfidenceScorer(cfg.Guard.ConfScoreMin, cfg.Guard.ConfScoreMax),
		contexts:   NewContextBuilder(cfg.Context.MaxCharsPerDoc, cfg.Context.MaxContextChars, cfg.Context.TrimLimit),
		maxDBLimit: cfg.Relational.MaxDBLimit,
	}
}

// Chat 文档问答
// 守卫顺序：无结果 → 最优距离过大 → 优质命中不足（长父文档可豁免）→ 生成答案。
// 检索错误与模型调用错误原样上抛。
func (s *Service) Chat(ctx context.Context, question string, opts Options) (*ChatAnswer, error) {
	results, err := s.retriever.Search(ctx, question)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.record("chat", TypeRagAnswer, GuardNoResults)
		return &ChatAnswer{
			Type:     TypeRagAnswer,
			Question: question,
			Answer:   msgNoEvidence,
			Sources:  []Source{},
			Guard:    Guard{Reason: GuardNoResults},
		}, nil
	}

	topScore, goodHits := s.guard.Stats(results)
	conf := s.scorer.Calculate(topScore, goodHits)

	if topScore > s.guard.TopScoreMax {
		s.record("chat", TypeRagAnswer, GuardLowConfidence)
		return &ChatAnswer{
			Type:       TypeRagAnswer,
			Question:   question,
			Answer:     msgWeakEvidence,
			Sources:    sourcesFromResults(results),
			Guard:      guardWithStats(GuardLowConfidence, topScore, goodHits),
			Confidence: &conf,
		}, nil
	}

	if goodHits < s.guard.MinGoodHits && !HasParentContext(results) {
		s.record("chat", TypeRagAnswer, GuardInsufficientGoodHits)
		return &ChatAnswer{
			Type:       TypeRagAnswer,
			Question:   question,
			Answer:     msgWeakEvidence,
			Sources:    sourcesFromResults(results),
			Guard:      guardWithStats(GuardInsufficientGoodHits, topScore, goodHits),
			Confidence: &conf,
		}, nil
	}

	docCtx := s.buildContext(results)
	outMsg, err := s.chains.DocAnswer.Invoke(ctx, &wfmodel.DocAnswerInput{
		Question:    question,
		Context:     docCtx,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	s.record("chat", TypeRagAnswer, GuardOK)
	return &ChatAnswer{
		Type:       TypeRagAnswer,
		Question:   question,
		Answer:     messageText(outMsg),
		Sources:    sourcesFromResults(results),
		Guard:      guardWithStats(GuardOK, topScore, goodHits),
		Confidence: &conf,
	}, nil
}

// Command 白名单命令生成
// 命令路径比问答保守：低置信直接拒绝执行，解析失败与越权动作都不会透出。
func (s *Service) Command(ctx context.Context, question string, opts Options) (*CommandAnswer, error) {
	results, err := s.retriever.Search(ctx, question)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.record("command", TypeCommand, GuardNoResults)
		return &CommandAnswer{
			Type:       TypeCommand,
			Speech:     msgNoCommandFound,
			Actions:    []wfmodel.CommandAction{},
			Confidence: Confidence{Level: LevelLow, Score: 0.0, Details: ConfidenceDetails{Base: 0.0, Bonus: 0.0}},
			Guard:      Guard{Reason: GuardNoResults},
		}, nil
	}

	topScore, goodHits := s.guard.Stats(results)
	conf := s.scorer.Calculate(topScore, goodHits)

	if conf.Level == LevelLow && conf.Score < 0.5 {
		s.record("command", TypeCommand, GuardLowConfidence)
		return &CommandAnswer{
			Type:       TypeCommand,
			Speech:     msgLowCommandConfidence,
			Actions:    []wfmodel.CommandAction{},
			Confidence: conf,
			Sources:    sourcesFromResults(results),
			Guard:      guardWithStats(GuardLowConfidence, topScore, goodHits),
		}, nil
	}

	docCtx := s.buildContext(results)
	outMsg, err := s.chains.Command.Invoke(ctx, &wfmodel.CommandInput{
		Question:    question,
		Context:     docCtx,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	plan, perr := ParseCommandPlan(messageText(outMsg))
	if perr != nil {
		logger.Warn(ctx, "command plan parse failed",
			"error", perr.Error(),
			"raw_len", len(messageText(outMsg)),
		)
		s.record("command", TypeCommand, GuardParseFailed)
		return &CommandAnswer{
			Type:       TypeCommand,
			Speech:     msgCommandParseFailed,
			Actions:    []wfmodel.CommandAction{},
			Confidence: conf,
			Sources:    sourcesFromResults(results),
			Guard:      Guard{Reason: GuardParseFailed},
		}, nil
	}

	if ok, detail := s.gate.Validate(plan.Actions); !ok {
		s.record("command", TypeCommand, GuardCommandNotAllowed)
		return &CommandAnswer{
			Type:       TypeCommand,
			Speech:     msgCommandNotAllowed,
			Actions:    []wfmodel.CommandAction{},
			Confidence: conf,
			Sources:    sourcesFromResults(results),
			Guard:      Guard{Reason: GuardCommandNotAllowed, Detail: detail},
		}, nil
	}

	s.record("command", TypeCommand, GuardOK)
	return &CommandAnswer{
		Type:       TypeCommand,
		Speech:     plan.Speech,
		Actions:    plan.Actions,
		Confidence: conf,
		Sources:    sourcesFromResults(results),
		Guard:      Guard{Reason: GuardOK},
	}, nil
}

// Ask 统一问答入口
// DB 问题走 SQL 生成与混合应答，其余按意图分流到命令或文档问答。
func (s *Service) Ask(ctx context.Context, question string, opts Options) (*AskResult, error) {
	if s.isDBQuestion(ctx, question, opts) {
		hy, err := s.hybridAnswer(ctx, question, opts)
		if err != nil {
			return nil, err
		}
		return &AskResult{Hybrid: hy}, nil
	}

	intent, err := s.classifyIntent(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	if intent.Intent == wfmodel.IntentCommand {
		cmd, err := s.Command(ctx, question, opts)
		if err != nil {
			return nil, err
		}
		return &AskResult{Command: cmd}, nil
	}

	chat, err := s.Chat(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	return &AskResult{Chat: chat}, nil
}

// isDBQuestion 路由判定，任何失败都按"非 DB 问题"处理
func (s *Service) isDBQuestion(ctx context.Context, question string, opts Options) bool {
	outMsg, err := s.chains.DBRoute.Invoke(ctx, &wfmodel.DBRouteInput{
		Question:    question,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		logger.Warn(ctx, "db route call failed, treating as non-db question", "error", err.Error())
		return false
	}

	decision, err := ParseDBRoute(messageText(outMsg))
	if err != nil {
		logger.Warn(ctx, "db route parse failed, treating as non-db question", "error", err.Error())
		return false
	}
	return decision.IsDBQuestion
}

// classifyIntent 规则优先的意图分类，模型输出解析失败安全回落到 explain
func (s *Service) classifyIntent(ctx context.Context, question string, opts Options) (*wfmodel.IntentDecision, error) {
	if d := RuleIntent(question); d != nil {
		return d, nil
	}

	outMsg, err := s.chains.Intent.Invoke(ctx, &wfmodel.IntentInput{
		Question:    question,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	decision, perr := ParseIntent(messageText(outMsg))
	if perr != nil {
		logger.Warn(ctx, "intent parse failed, defaulting to explain", "error", perr.Error())
		return &wfmodel.IntentDecision{Intent: wfmodel.IntentExplain, Reason: "llm_parse_failed"}, nil
	}
	return decision, nil
}

// hybridAnswer DB + 文档混合应答
// 降级阶梯：SQL 生成 → SELECT 闸门 → 执行 → 单次混合 → 摘要 + 合成 → 规则摘要。
// 每降一级，信封的 guard.reason 都会标出所处层级。
func (s *Service) hybridAnswer(ctx context.Context, question string, opts Options) (*HybridResult, error) {
	schemaCtx, err := s.schemaProvider.SchemaContext(ctx)
	if err != nil {
		return nil, err
	}

	genMsg, err := s.chains.SQLQuery.Invoke(ctx, &wfmodel.SQLQueryInput{
		Question:      question,
		SchemaContext: schemaCtx,
		MaxLimit:      s.maxDBLimit,
		Provider:      opts.Provider,
		Model:         opts.Model,
		Temperature:   opts.Temperature,
		MaxTokens:     opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	plan, perr := ParseSQLQueryPlan(messageText(genMsg))
	if perr != nil {
		logger.Warn(ctx, "sql plan parse failed, running safe fallback query", "error", perr.Error())
		return s.safeQueryFallback(ctx, question, opts)
	}

	if ok, detail := relational.ValidateSelectOnly(plan.SQL); !ok {
		s.recordHybrid(GuardSQLNotSelectOnly)
		return &HybridResult{
			Type:      TypeHybridAnswer,
			Question:  question,
			Speech:    msgQueryNotAllowed,
			DBSummary: "",
			DocNotes:  msgNoDocEvidence,
			Answer:    msgSelectOnlyAllowed,
			SQL:       plan.SQL,
			Params:    plan.Params,
			Rows:      []map[string]any{},
			Sources:   []Source{},
			Guard:     Guard{Reason: GuardSQLNotSelectOnly, Detail: detail},
		}, nil
	}

	rows, err := s.executor.SelectRows(ctx, plan.SQL, plan.Params)
	if err != nil {
		logger.Warn(ctx, "generated sql execute failed", "error", err.Error())
		s.recordHybrid(GuardDBExecuteFailed)
		return &HybridResult{
			Type:      TypeHybridAnswer,
			Question:  question,
			Speech:    msgDBExecuteError,
			DBSummary: "",
			DocNotes:  msgNoDocEvidence,
			Answer:    msgDBExecuteError,
			SQL:       plan.SQL,
			Params:    plan.Params,
			Rows:      []map[string]any{},
			Sources:   []Source{},
			Guard:     Guard{Reason: GuardDBExecuteFailed, Detail: err.Error()},
		}, nil
	}
	rows.Truncate(s.maxDBLimit)
	rowsJSON := jsonText(rows.Rows, "[]")

	docCtx, sources, err := s.docContextForHybrid(ctx, question)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(docCtx) == "" {
		sources = []Source{}
	}

	// 提示词里的参数要带上 SQL 本体，键冲突时以模型给出的参数为准
	promptParams := mergeSQLParams(plan.SQL, plan.Params)

	oneMsg, err := s.chains.HybridOneCall.Invoke(ctx, &wfmodel.HybridOneCallInput{
		Question:    question,
		Query:       "RawSQL",
		ParamsJSON:  jsonText(promptParams, "{}"),
		RowsJSON:    rowsJSON,
		DocContext:  docCtx,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if hy, herr := ParseHybridAnswer(messageText(oneMsg)); herr == nil {
		s.recordHybrid(GuardOK)
		return &HybridResult{
			Type:      TypeHybridAnswer,
			Question:  question,
			Speech:    hy.Speech,
			DBSummary: hy.DBSummary,
			DocNotes:  hy.DocNotes,
			Answer:    hy.Answer,
			SQL:       plan.SQL,
			Params:    plan.Params,
			Rows:      rows.Rows,
			Sources:   sources,
			Guard:     Guard{Reason: GuardOK},
		}, nil
	}

	logger.Warn(ctx, "hybrid onecall parse failed, trying 2-call fallback")

	// 单次混合失败后改走两段式：先让模型摘要查询结果，失败再退回规则摘要
	var sum *wfmodel.DBSummaryResult
	if sumMsg, serr := s.chains.DBSummary.Invoke(ctx, &wfmodel.DBSummaryInput{
		Question:    question,
		Query:       "RawSQL",
		ParamsJSON:  jsonText(promptParams, "{}"),
		RowsJSON:    rowsJSON,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}); serr == nil {
		if parsed, sperr := ParseDBSummary(messageText(sumMsg)); sperr == nil {
			sum = parsed
		}
	}

	dbSummaryText := ""
	if sum != nil && strings.TrimSpace(sum.Summary) != "" {
		dbSummaryText = sum.Summary
	} else {
		dbSummaryText = BuildFallbackSummary(question, "RawSQL", promptParams, rows)
	}

	speechText := ""
	if sum != nil && sum.Speech != "" {
		speechText = strings.TrimSpace(sum.Speech)
	}
	if speechText == "" {
		speechText = plan.Speech
	}
	if speechText == "" {
		speechText = msgDBResultFetched
	}

	var hy2 *wfmodel.HybridAnswer
	if combMsg, cerr := s.chains.HybridCombine.Invoke(ctx, &wfmodel.HybridCombineInput{
		Question:    question,
		DBSummary:   dbSummaryText,
		DocContext:  docCtx,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}); cerr == nil {
		if parsed, hperr := ParseHybridCombined(messageText(combMsg)); hperr == nil {
			hy2 = parsed
		}
	}

	if hy2 != nil {
		speech := hy2.Speech
		if speech == "" {
			speech = speechText
		}
		s.recordHybrid(GuardHybridTwoCallFallback)
		return &HybridResult{
			Type:      TypeHybridAnswer,
			Question:  question,
			Speech:    speech,
			DBSummary: dbSummaryText,
			DocNotes:  hy2.DocNotes,
			Answer:    hy2.Answer,
			SQL:       plan.SQL,
			Params:    plan.Params,
			Rows:      rows.Rows,
			Sources:   sources,
			Guard:     Guard{Reason: GuardHybridTwoCallFallback},
		}, nil
	}

	s.recordHybrid(GuardHybridAllFallbacks)
	return &HybridResult{
		Type:      TypeHybridAnswer,
		Question:  question,
		Speech:    speechText,
		DBSummary: dbSummaryText,
		DocNotes:  msgNoDocEvidence,
		Answer:    dbSummaryText,
		SQL:       plan.SQL,
		Params:    plan.Params,
		Rows:      rows.Rows,
		Sources:   sources,
		Guard:     Guard{Reason: GuardHybridAllFallbacks},
	}, nil
}

// safeQueryFallback SQL 生成解析失败后的保底路径
// 固定查询排行榜数据，先尝试单次混合，再退回规则摘要。
// 保底 SQL 本身执行失败说明 DB 不可用，直接上抛。
func (s *Service) safeQueryFallback(ctx context.Context, question string, opts Options) (*HybridResult, error) {
	rows, err := s.executor.SelectRows(ctx, fallbackSafeSQL, map[string]any{})
	if err != nil {
		return nil, err
	}
	rows.Truncate(s.maxDBLimit)
	rowsJSON := jsonText(rows.Rows, "[]")

	docCtx, sources, err := s.docContextForHybrid(ctx, question)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(docCtx) == "" {
		sources = []Source{}
	}

	promptParams := map[string]any{"sql": fallbackSafeSQL, "limit": 10}

	hyMsg, err := s.chains.HybridOneCall.Invoke(ctx, &wfmodel.HybridOneCallInput{
		Question:    question,
		Query:       "RawSQL(fallback)",
		ParamsJSON:  jsonText(promptParams, "{}"),
		RowsJSON:    rowsJSON,
		DocContext:  docCtx,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if hy, herr := ParseHybridAnswer(messageText(hyMsg)); herr == nil {
		s.recordHybrid(GuardSQLParseFallbackOK)
		return &HybridResult{
			Type:      TypeHybridAnswer,
			Question:  question,
			Speech:    hy.Speech,
			DBSummary: hy.DBSummary,
			DocNotes:  hy.DocNotes,
			Answer:    hy.Answer,
			SQL:       fallbackSafeSQL,
			Params:    map[string]any{},
			Rows:      rows.Rows,
			Sources:   sources,
			Guard:     Guard{Reason: GuardSQLParseFallbackOK},
		}, nil
	}

	summary := BuildFallbackSummary(question, "RawSQL(fallback)", promptParams, rows)
	s.recordHybrid(GuardSQLParseFallbackSummary)
	return &HybridResult{
		Type:      TypeHybridAnswer,
		Question:  question,
		Speech:    msgDBResultFetched,
		DBSummary: summary,
		DocNotes:  msgNoDocEvidence,
		Answer:    summary,
		SQL:       fallbackSafeSQL,
		Params:    map[string]any{},
		Rows:      rows.Rows,
		Sources:   sources,
		Guard:     Guard{Reason: GuardSQLParseFallbackSummary},
	}, nil
}

// docContextForHybrid 为混合应答准备文档上下文
// 相关性不足时只保留证据列表、不注入上下文，由调用方决定是否清空证据。
func (s *Service) docContextForHybrid(ctx context.Context, question string) (string, []Source, error) {
	results, err := s.retriever.Search(ctx, question)
	if err != nil {
		return "", nil, err
	}

	sources := sourcesFromResults(results)
	if len(results) == 0 {
		return "", sources, nil
	}

	topScore, goodHits := s.guard.Stats(results)
	if topScore > s.guard.TopScoreMax || goodHits < s.guard.MinGoodHits {
		return "", sources, nil
	}
	return s.buildContext(results), sources, nil
}

func (s *Service) buildContext(results []retrieval.ScoredParent) string {
	docs := make([]*entity.ParentDocument, 0, len(results))
	for _, r := range results {
		docs = append(docs, r.Doc)
	}
	return s.contexts.TrimContext(s.contexts.FormatDocs(docs))
}

func (s *Service) record(operation, answerType, reason string) {
	metrics.AnswerRequestsTotal.WithLabelValues(operation, answerType).Inc()
	metrics.GuardDecisionTotal.WithLabelValues(operation, reason).Inc()
}

func (s *Service) recordHybrid(reason string) {
	s.record("ask", TypeHybridAnswer, reason)
	metrics.FallbackTierTotal.WithLabelValues(reason).Inc()
}

// sourcesFromResults 把检索结果折叠为证据列表，正文只保留前 180 字
func sourcesFromResults(results []retrieval.ScoredParent) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		src := Source{Score: r.Score}
		if r.Doc != nil {
			src.Source = r.Doc.Source()
			src.Preview = r.Doc.Preview(180)
		}
		sources = append(sources, src)
	}
	return sources
}

// mergeSQLParams 组装注入提示词的参数表，模型参数覆盖 sql 键
func mergeSQLParams(sql string, params map[string]any) map[string]any {
	merged := make(map[string]any, len(params)+1)
	merged["sql"] = sql
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

func jsonText(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

func messageText(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	return msg.Content
}
