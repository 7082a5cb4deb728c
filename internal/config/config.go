// Package config 负责配置的定义、加载与默认值
package config

import (
	"time"
)

// Config 应用配置根结构，字段与 configs/config.yaml 一一对应
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Vector        VectorConfig        `mapstructure:"vector"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	Rerank        RerankConfig        `mapstructure:"rerank"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	Guard         GuardConfig         `mapstructure:"guard"`
	Context       ContextConfig       `mapstructure:"context"`
	Relational    RelationalConfig    `mapstructure:"relational"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Security      SecurityConfig      `mapstructure:"security"`
}

// AppConfig 应用标识
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
}

// ServerConfig 服务端配置
type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http"`
}

// HTTPServerConfig HTTP 监听与超时
type HTTPServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig 关系库配置
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig 业务库连接与连接池
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// CacheConfig 缓存层配置
type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig 父文档存储与限流共用的 Redis 连接
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// VectorConfig 向量索引配置
type VectorConfig struct {
	Milvus MilvusConfig `mapstructure:"milvus"`
}

// MilvusConfig Milvus 连接与 HNSW 参数
type MilvusConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	CollectionPrefix   string `mapstructure:"collection_prefix"`
	IndexType          string `mapstructure:"index_type"`
	MetricType         string `mapstructure:"metric_type"`
	HNSWM              int    `mapstructure:"hnsw_m"`
	HNSWEfConstruction int    `mapstructure:"hnsw_ef_construction"`
	SearchEf           int    `mapstructure:"search_ef"`
}

// LLMConfig 生成模型配置，多 provider 按名字选择
type LLMConfig struct {
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig 单个 OpenAI 兼容 provider
type ProviderConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig 向量化配置，Dimension 同时决定集合建表维度
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
	BatchSize int    `mapstructure:"batch_size"`
	Endpoint  string `mapstructure:"endpoint"`
}

// RerankConfig 重排序服务配置。
// Endpoint 为空时禁用重排，检索结果保持向量检索顺序。
type RerankConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RetrievalConfig 两级检索配置
type RetrievalConfig struct {
	// InitialK 子块粗召回数量
	InitialK int `mapstructure:"initial_k"`
	// TopK 最终返回的父文档数量
	TopK int `mapstructure:"top_k"`
	// OCRDomain 运单类查询定向过滤的领域标签
	OCRDomain string `mapstructure:"ocr_domain"`
}

// GuardConfig 答案守卫配置
type GuardConfig struct {
	// TopScoreMax 最优距离超过该值视为低置信
	TopScoreMax float64 `mapstructure:"top_score_max"`
	// MinGoodHits 良好命中数下限
	MinGoodHits int `mapstructure:"min_good_hits"`
	// GoodHitScoreMax 距离不超过该值计为良好命中
	GoodHitScoreMax float64 `mapstructure:"good_hit_score_max"`
	// ConfScoreMin 置信度归一化下界 (距离越小越好)
	ConfScoreMin float64 `mapstructure:"conf_score_min"`
	// ConfScoreMax 置信度归一化上界
	ConfScoreMax float64 `mapstructure:"conf_score_max"`
}

// ContextConfig 上下文拼接配置
type ContextConfig struct {
	// MaxCharsPerDoc 单文档截断长度
	MaxCharsPerDoc int `mapstructure:"max_chars_per_doc"`
	// MaxContextChars 拼接阶段总长度预算
	MaxContextChars int `mapstructure:"max_context_chars"`
	// TrimLimit 提示词注入前的最终裁剪上限
	TrimLimit int `mapstructure:"trim_limit"`
}

// RelationalConfig 结构化查询配置
type RelationalConfig struct {
	// MaxDBLimit 查询结果行数上限
	MaxDBLimit int `mapstructure:"max_db_limit"`
	// SchemaCacheTTL 库表结构缓存有效期
	SchemaCacheTTL time.Duration `mapstructure:"schema_cache_ttl"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig 日志级别与输出格式
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TracingConfig 追踪配置，OTLP gRPC 上报
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置，指标挂在业务端口的 Path 上
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

// JWTConfig JWT 配置，令牌由桌面端签发，这里只配校验参数
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// RateLimitConfig 限流配置，按 客户端IP+路径 的滑动窗口计数
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerSecond int  `mapstructure:"requests_per_second"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}
