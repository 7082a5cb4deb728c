// Package rerank 提供重排序服务客户端
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("rerank")

const defaultRerankTimeout = 10 * time.Second

// Client 基于 HTTP 的重排序客户端
// 兼容 Jina / Cohere 风格的 rerank 接口：
// POST {model, query, documents} -> {results: [{index, relevance_score}]}。
// Endpoint 为空时 Enabled 返回 false，检索层保持向量顺序。
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type rerankResponse struct {
	Results []rerankResult `json:"results"`
}

func NewClient(cfg *config.RerankConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRerankTimeout
	}
	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled 重排序是否已配置
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Rerank 按相关性对候选文本重排，返回原始下标的降序排列
func (c *Client) Rerank(ctx context.Context, query string, texts []string) ([]int, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("rerank endpoint is empty")
	}
	if len(texts) == 0 {
		return []int{}, nil
	}

	ctx, span := tracer.Start(ctx, "rerank.Rerank",
		trace.WithAttributes(attribute.Int("candidates", len(texts))))
	defer span.End()

	start := time.Now()
	order, err := c.doRerank(ctx, query, texts)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.RerankDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) doRerank(ctx context.Context, query string, texts []string) ([]int, error) {
	reqBody, err := json.Marshal(&rerankRequest{
		Model:     c.model,
		Query:     query,
		Documents: texts,
		TopN:      len(texts),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	u, err := url.Parse(strings.TrimRight(c.endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid rerank endpoint: %w", err)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/rerank"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("rerank request failed: status=%d", httpResp.StatusCode)
	}

	var resp rerankResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	order := make([]int, 0, len(resp.Results))
	for _, r := range resp.Results {
		order = append(order, r.Index)
	}
	return order, nil
}
