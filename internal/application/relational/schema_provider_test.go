package relational

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskmate-ai-api/internal/domain/entity"
)

type fakeIntrospector struct {
	mu     sync.Mutex
	tables []entity.TableSchema
	err    error
	calls  int
	delay  time.Duration
}

func (f *fakeIntrospector) DescribeTables(ctx context.Context) ([]entity.TableSchema, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}

func (f *fakeIntrospector) DatabaseName() string { return "deskmate_demo" }
func (f *fakeIntrospector) CacheKey() string     { return "localhost:5432/deskmate_demo" }

func (f *fakeIntrospector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func demoTables() []entity.TableSchema {
	return []entity.TableSchema{
		{
			Name: "users",
			Columns: []entity.ColumnSchema{
				{Name: "user_id", DataType: "bigint", IsPrimary: true, IsIdentity: true},
				{Name: "username", DataType: "text", IsUnique: true},
			},
		},
		{
			Name: "scores",
			Columns: []entity.ColumnSchema{
				{Name: "score_id", DataType: "bigint", IsPrimary: true, IsIdentity: true},
				{Name: "user_id", DataType: "bigint", IsIndexed: true},
				{Name: "score", DataType: "integer"},
				{Name: "mode", DataType: "text", Nullable: true},
			},
			ForeignKeys: []entity.ForeignKey{
				{Column: "user_id", RefTable: "users", RefColumn: "user_id"},
			},
		},
	}
}

func TestRenderSchemaText(t *testing.T) {
	got := RenderSchemaText("deskmate_demo", demoTables())

	want := strings.Join([]string{
		"DB: deskmate_demo",
		"",
		"TABLES & COLUMNS:",
		"",
		"TABLE users",
		"- user_id: bigint (PK, NOT NULL, IDENTITY)",
		"- username: text (UNIQUE, NOT NULL)",
		"",
		"TABLE scores",
		"- score_id: bigint (PK, NOT NULL, IDENTITY)",
		"- user_id: bigint (INDEXED, NOT NULL)",
		"- score: integer (NOT NULL)",
		"- mode: text",
		"",
		"FOREIGN KEYS (JOIN HINTS):",
		"- scores.user_id -> users.user_id",
		"",
		"NOTE: Use JOIN when needed. Prefer selecting only necessary columns.",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderSchemaText_NoForeignKeys(t *testing.T) {
	got := RenderSchemaText("demo", []entity.TableSchema{
		{Name: "notes", Columns: []entity.ColumnSchema{{Name: "body", DataType: "text", Nullable: true}}},
	})

	assert.NotContains(t, got, "FOREIGN KEYS")
	assert.Contains(t, got, "TABLE notes\n- body: text")
}

func TestRenderSchemaText_PrimaryWinsOverUnique(t *testing.T) {
	got := RenderSchemaText("demo", []entity.TableSchema{
		{Name: "t", Columns: []entity.ColumnSchema{
			{Name: "id", DataType: "bigint", IsPrimary: true, IsUnique: true, IsIndexed: true},
		}},
	})

	assert.Contains(t, got, "- id: bigint (PK, NOT NULL)")
	assert.NotContains(t, got, "UNIQUE")
	assert.NotContains(t, got, "INDEXED")
}

func TestSchemaProvider_CachesUntilTTL(t *testing.T) {
	intro := &fakeIntrospector{tables: demoTables()}
	p := NewSchemaProvider(intro, time.Minute)
	ctx := context.Background()

	first, err := p.SchemaContext(ctx)
	require.NoError(t, err)
	assert.Contains(t, first, "DB: deskmate_demo")
	assert.Equal(t, 1, intro.callCount())

	second, err := p.SchemaContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, intro.callCount())
}

func TestSchemaProvider_ExpiredEntryReloads(t *testing.T) {
	intro := &fakeIntrospector{tables: demoTables()}
	p := NewSchemaProvider(intro, time.Nanosecond)
	ctx := context.Background()

	_, err := p.SchemaContext(ctx)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, err = p.SchemaContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, intro.callCount())
}

func TestSchemaProvider_ErrorNotCached(t *testing.T) {
	intro := &fakeIntrospector{err: errors.New("connection refused")}
	p := NewSchemaProvider(intro, time.Minute)
	ctx := context.Background()

	_, err := p.SchemaContext(ctx)
	assert.EqualError(t, err, "connection refused")

	intro.err = nil
	intro.tables = demoTables()

	text, err := p.SchemaContext(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "TABLE users")
	assert.Equal(t, 2, intro.callCount())
}

func TestSchemaProvider_RefreshBypassesCache(t *testing.T) {
	intro := &fakeIntrospector{tables: demoTables()}
	p := NewSchemaProvider(intro, time.Minute)
	ctx := context.Background()

	_, err := p.SchemaContext(ctx)
	require.NoError(t, err)

	intro.mu.Lock()
	intro.tables = append(intro.tables, entity.TableSchema{
		Name:    "settings",
		Columns: []entity.ColumnSchema{{Name: "key", DataType: "text"}},
	})
	intro.mu.Unlock()

	refreshed, err := p.Refresh(ctx)
	require.NoError(t, err)
	assert.Contains(t, refreshed, "TABLE settings")
	assert.Equal(t, 2, intro.callCount())

	// Refresh 的结果要回写缓存
	cached, err := p.SchemaContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, refreshed, cached)
	assert.Equal(t, 2, intro.callCount())
}

func TestSchemaProvider_ConcurrentLoadsCollapse(t *testing.T) {
	intro := &fakeIntrospector{tables: demoTables(), delay: 20 * time.Millisecond}
	p := NewSchemaProvider(intro, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := p.SchemaContext(ctx)
			assert.NoError(t, err)
			assert.Contains(t, text, "DB: deskmate_demo")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, intro.callCount())
}

func TestNewSchemaProvider_DefaultTTL(t *testing.T) {
	p := NewSchemaProvider(&fakeIntrospector{}, 0)
	assert.Equal(t, defaultSchemaCacheTTL, p.ttl)
}
