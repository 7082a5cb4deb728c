package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load 按 基础文件 -> 环境文件 -> 环境变量 的优先级装配配置。
// 文件内容支持 ${VAR:default} 占位符，读入前先展开。
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := mergeConfigFile(v, "configs/config.yaml", false); err != nil {
		return nil, err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := mergeConfigFile(v, fmt.Sprintf("configs/config.%s.yaml", env), true); err != nil {
		return nil, err
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	applyDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// mergeConfigFile 读入单个配置文件，optional 的文件缺失时跳过
func mergeConfigFile(v *viper.Viper, path string, optional bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(content)))
	if v.ConfigFileUsed() != "" {
		if err := v.MergeConfig(reader); err != nil {
			return fmt.Errorf("merge config %s: %w", path, err)
		}
		return nil
	}
	if err := v.ReadConfig(reader); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	// 标记首个已加载文件，后续文件走 merge 分支
	v.SetConfigFile(path)
	return nil
}

var envPlaceholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

// expandEnv 展开 ${VAR} 与 ${VAR:default} 占位符。
// 变量未定义且无默认值时保留原样，便于发现漏配。
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPlaceholder.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(groups[1]); ok {
			return val
		}
		if groups[2] != "" {
			return groups[3]
		}
		return match
	})
}

// defaults 兜底默认值，显式配置与环境变量均优先于它
var defaults = map[string]any{
	"app.name":    "deskmate-ai-api",
	"app.version": "v0.0.0",
	"app.env":     "development",

	"server.http.host":          "0.0.0.0",
	"server.http.port":          8080,
	"server.http.read_timeout":  "30s",
	"server.http.write_timeout": "60s",
	"server.http.idle_timeout":  "120s",

	"database.postgres.host":               "localhost",
	"database.postgres.port":               5432,
	"database.postgres.user":               "postgres",
	"database.postgres.database":           "deskmate",
	"database.postgres.ssl_mode":           "disable",
	"database.postgres.max_open_conns":     50,
	"database.postgres.max_idle_conns":     10,
	"database.postgres.conn_max_lifetime":  "30m",
	"database.postgres.conn_max_idle_time": "5m",

	"cache.redis.host":           "localhost",
	"cache.redis.port":           6379,
	"cache.redis.db":             0,
	"cache.redis.pool_size":      100,
	"cache.redis.min_idle_conns": 10,
	"cache.redis.dial_timeout":   "5s",
	"cache.redis.read_timeout":   "3s",
	"cache.redis.write_timeout":  "3s",

	"vector.milvus.host":                 "localhost",
	"vector.milvus.port":                 19530,
	"vector.milvus.collection_prefix":    "deskmate",
	"vector.milvus.index_type":           "HNSW",
	"vector.milvus.metric_type":          "L2",
	"vector.milvus.hnsw_m":               16,
	"vector.milvus.hnsw_ef_construction": 200,
	"vector.milvus.search_ef":            64,

	"embedding.dimension":  1536,
	"embedding.batch_size": 16,

	"rerank.timeout": "10s",

	"retrieval.initial_k":  20,
	"retrieval.top_k":      5,
	"retrieval.ocr_domain": "ocr_scan",

	"guard.top_score_max":      0.95,
	"guard.min_good_hits":      2,
	"guard.good_hit_score_max": 0.80,
	"guard.conf_score_min":     0.25,
	"guard.conf_score_max":     1.20,

	"context.max_chars_per_doc": 900,
	"context.max_context_chars": 3500,
	"context.trim_limit":        12000,

	"relational.max_db_limit":     50,
	"relational.schema_cache_ttl": "10m",

	"observability.logging.level":       "info",
	"observability.logging.format":      "json",
	"observability.tracing.enabled":     true,
	"observability.tracing.endpoint":    "localhost:4317",
	"observability.tracing.sample_rate": 1.0,
	"observability.metrics.enabled":     true,
	"observability.metrics.path":        "/metrics",

	"security.jwt.issuer":                     "deskmate-ai",
	"security.rate_limit.enabled":             true,
	"security.rate_limit.requests_per_second": 100,
}

func applyDefaults(v *viper.Viper) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
}
