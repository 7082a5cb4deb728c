package relational

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"deskmate-ai-api/internal/domain/entity"
	"deskmate-ai-api/internal/domain/repository"
	"deskmate-ai-api/pkg/logger"
)

const defaultSchemaCacheTTL = 10 * time.Minute

// SchemaProvider 缓存并渲染库表结构文本
// 结构探查需要扫 information_schema，这里按实例键做 TTL 缓存，
// 并用 singleflight 合并缓存失效瞬间的并发探查。
type SchemaProvider struct {
	introspector repository.SchemaIntrospector
	ttl          time.Duration

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]schemaEntry
}

type schemaEntry struct {
	text      string
	expiresAt time.Time
}

func NewSchemaProvider(introspector repository.SchemaIntrospector, ttl time.Duration) *SchemaProvider {
	if ttl <= 0 {
		ttl = defaultSchemaCacheTTL
	}
	return &SchemaProvider{
		introspector: introspector,
		ttl:          ttl,
		cache:        make(map[string]schemaEntry),
	}
}

// SchemaContext 返回注入提示词的结构文本，缓存命中时不触库
func (p *SchemaProvider) SchemaContext(ctx context.Context) (string, error) {
	key := p.introspector.CacheKey()

	p.mu.RLock()
	entry, ok := p.cache[key]
	p.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.text, nil
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		return p.load(ctx, key)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Refresh 跳过缓存强制重新探查，返回最新结构文本
func (p *SchemaProvider) Refresh(ctx context.Context) (string, error) {
	return p.load(ctx, p.introspector.CacheKey())
}

func (p *SchemaProvider) load(ctx context.Context, key string) (string, error) {
	tables, err := p.introspector.DescribeTables(ctx)
	if err != nil {
		return "", err
	}

	text := RenderSchemaText(p.introspector.DatabaseName(), tables)

	p.mu.Lock()
	p.cache[key] = schemaEntry{text: text, expiresAt: time.Now().Add(p.ttl)}
	p.mu.Unlock()

	logger.Debug(ctx, "db schema context refreshed", "key", key, "tables", len(tables))
	return text, nil
}

// RenderSchemaText 把表结构渲染为提示词文本
// 每列标注约束（PK/UNIQUE/INDEXED、NOT NULL、IDENTITY），
// 外键单独列为 JOIN 提示，帮助模型生成正确的关联查询。
func RenderSchemaText(dbName string, tables []entity.TableSchema) string {
	lines := make([]string, 0, 16)
	lines = append(lines, "DB: "+dbName)
	lines = append(lines, "")
	lines = append(lines, "TABLES & COLUMNS:")

	fkLines := make([]string, 0, 4)
	for _, t := range tables {
		lines = append(lines, "\nTABLE "+t.Name)
		for _, c := range t.Columns {
			lines = append(lines, renderColumn(c))
		}
		for _, fk := range t.ForeignKeys {
			fkLines = append(fkLines, "- "+t.Name+"."+fk.Column+" -> "+fk.RefTable+"."+fk.RefColumn)
		}
	}

	if len(fkLines) > 0 {
		lines = append(lines, "\nFOREIGN KEYS (JOIN HINTS):")
		lines = append(lines, fkLines...)
	}

	lines = append(lines, "\nNOTE: Use JOIN when needed. Prefer selecting only necessary columns.")
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func renderColumn(c entity.ColumnSchema) string {
	meta := make([]string, 0, 3)
	switch {
	case c.IsPrimary:
		meta = append(meta, "PK")
	case c.IsUnique:
		meta = append(meta, "UNIQUE")
	case c.IsIndexed:
		meta = append(meta, "INDEXED")
	}
	if !c.Nullable {
		meta = append(meta, "NOT NULL")
	}
	if c.IsIdentity {
		meta = append(meta, "IDENTITY")
	}

	line := "- " + c.Name + ": " + c.DataType
	if len(meta) > 0 {
		line += " (" + strings.Join(meta, ", ") + ")"
	}
	return line
}
