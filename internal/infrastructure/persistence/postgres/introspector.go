// Package postgres 业务库访问层
package postgres

import (
	"context"
	"fmt"
	"strings"

	"deskmate-ai-api/internal/config"
	"deskmate-ai-api/internal/domain/entity"
	"deskmate-ai-api/internal/domain/repository"
)

// Introspector 库表结构探查器
// 从 information_schema 与 pg_index 读取 public schema 的表结构，
// 供 SQL 生成提示词渲染使用。
type Introspector struct {
	client *Client
	cfg    *config.PostgresConfig
}

func NewIntrospector(client *Client, cfg *config.PostgresConfig) *Introspector {
	return &Introspector{client: client, cfg: cfg}
}

var _ repository.SchemaIntrospector = (*Introspector)(nil)

// DatabaseName 返回目标库名
func (in *Introspector) DatabaseName() string {
	return in.cfg.Database
}

// CacheKey 返回标识库实例的键
func (in *Introspector) CacheKey() string {
	return fmt.Sprintf("%s:%d/%s", in.cfg.Host, in.cfg.Port, in.cfg.Database)
}

type tableNameRow struct {
	TableName string
}

type columnRow struct {
	TableName     string
	ColumnName    string
	DataType      string
	IsNullable    string
	IsIdentity    string
	ColumnDefault *string
}

type constraintRow struct {
	TableName      string
	ColumnName     string
	ConstraintType string
}

type indexRow struct {
	TableName  string
	ColumnName string
}

type foreignKeyRow struct {
	TableName  string
	ColumnName string
	RefTable   string
	RefColumn  string
}

// DescribeTables 返回 public schema 下全部基础表的结构
func (in *Introspector) DescribeTables(ctx context.Context) ([]entity.TableSchema, error) {
	if in == nil || in.client == nil {
		return nil, fmt.Errorf("postgres client not configured")
	}
	ctx, span := tracer.Start(ctx, "postgres.DescribeTables")
	defer span.End()

	db := in.client.db.WithContext(ctx)

	var tables []tableNameRow
	if err := db.Raw(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`).Scan(&tables).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var columns []columnRow
	if err := db.Raw(`
		SELECT table_name, column_name, data_type, is_nullable, is_identity, column_default
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position
	`).Scan(&columns).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}

	var constraints []constraintRow
	if err := db.Raw(`
		SELECT tc.table_name, kcu.column_name, tc.constraint_type
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = 'public'
		  AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
	`).Scan(&constraints).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list constraints: %w", err)
	}

	// 普通二级索引，主键与唯一索引已由约束标记覆盖
	var indexes []indexRow
	if err := db.Raw(`
		SELECT t.relname AS table_name, a.attname AS column_name
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE n.nspname = 'public'
		  AND NOT ix.indisprimary
		  AND NOT ix.indisunique
	`).Scan(&indexes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}

	var fks []foreignKeyRow
	if err := db.Raw(`
		SELECT tc.table_name, kcu.column_name,
		       ccu.table_name AS ref_table, ccu.column_name AS ref_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema = tc.table_schema
		WHERE tc.table_schema = 'public'
		  AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY tc.table_name, kcu.column_name
	`).Scan(&fks).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}

	return assembleSchemas(tables, columns, constraints, indexes, fks), nil
}

func assembleSchemas(
	tables []tableNameRow,
	columns []columnRow,
	constraints []constraintRow,
	indexes []indexRow,
	fks []foreignKeyRow,
) []entity.TableSchema {
	type colKey struct{ table, column string }

	primary := make(map[colKey]bool)
	unique := make(map[colKey]bool)
	for _, c := range constraints {
		k := colKey{c.TableName, c.ColumnName}
		switch c.ConstraintType {
		case "PRIMARY KEY":
			primary[k] = true
		case "UNIQUE":
			unique[k] = true
		}
	}

	indexed := make(map[colKey]bool)
	for _, ix := range indexes {
		indexed[colKey{ix.TableName, ix.ColumnName}] = true
	}

	colsByTable := make(map[string][]entity.ColumnSchema)
	for _, c := range columns {
		k := colKey{c.TableName, c.ColumnName}
		identity := c.IsIdentity == "YES"
		if !identity && c.ColumnDefault != nil && strings.HasPrefix(*c.ColumnDefault, "nextval(") {
			identity = true
		}
		colsByTable[c.TableName] = append(colsByTable[c.TableName], entity.ColumnSchema{
			Name:       c.ColumnName,
			DataType:   c.DataType,
			Nullable:   c.IsNullable != "NO",
			IsPrimary:  primary[k],
			IsUnique:   unique[k],
			IsIndexed:  indexed[k],
			IsIdentity: identity,
		})
	}

	fksByTable := make(map[string][]entity.ForeignKey)
	for _, fk := range fks {
		fksByTable[fk.TableName] = append(fksByTable[fk.TableName], entity.ForeignKey{
			Column:    fk.ColumnName,
			RefTable:  fk.RefTable,
			RefColumn: fk.RefColumn,
		})
	}

	out := make([]entity.TableSchema, 0, len(tables))
	for _, t := range tables {
		out = append(out, entity.TableSchema{
			Name:        t.TableName,
			Columns:     colsByTable[t.TableName],
			ForeignKeys: fksByTable[t.TableName],
		})
	}
	return out
}
