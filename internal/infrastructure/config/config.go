package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/comparo/backend/internal/infrastructure/log"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Vector    VectorConfig    `yaml:"vector"`
	RAG       RAGConfig       `yaml:"rag"`
	Chat      ChatConfig      `yaml:"chat"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Cache     CacheConfig     `yaml:"cache"`
	Admin     AdminConfig     `yaml:"admin"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Log       log.Config      `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"`
}

// DatabaseConfig SQLite 会话日志数据库配置
type DatabaseConfig struct {
	// Path 为空时使用 <datadir>/comparo.db
	Path string `yaml:"path"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

// OpenAIConfig OpenAI 兼容接口配置（向量化和对话共用）
type OpenAIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	ChatModel      string        `yaml:"chat_model"`
	EmbeddingModel string        `yaml:"embedding_model"`
	Temperature    float64       `yaml:"temperature"`
	MaxTokens      int           `yaml:"max_tokens"`
	Timeout        time.Duration `yaml:"timeout"`
}

// VectorConfig 向量存储配置
type VectorConfig struct {
	// Backend memory | qdrant | postgres
	Backend    string `yaml:"backend"`
	Dimension  int    `yaml:"dimension"`
	Collection string `yaml:"collection"`

	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`

	PostgresDSN string `yaml:"postgres_dsn"`
}

// RAGConfig 切分、入库与检索参数
// MatchThreshold 为 nil 时使用默认值，显式 0 表示不过滤
type RAGConfig struct {
	ChunkMaxLength   int      `yaml:"chunk_max_length"`
	ChunkOverlap     int      `yaml:"chunk_overlap"`
	IngestBatchSize  int      `yaml:"ingest_batch_size"`
	RetrieveLimit    int      `yaml:"retrieve_limit"`
	MatchThreshold   *float32 `yaml:"match_threshold"`
	MaxHistoryTokens int      `yaml:"max_history_tokens"`
}

// ChatConfig 对话控制器参数
type ChatConfig struct {
	DeliveryDelay   time.Duration `yaml:"delivery_delay"`
	TypingInterval  time.Duration `yaml:"typing_interval"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
	StatusTimeout   time.Duration `yaml:"status_timeout"`
}

// CatalogConfig 手机目录数据源
type CatalogConfig struct {
	URL     string        `yaml:"url"`
	TTL     time.Duration `yaml:"ttl"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig 目录缓存配置
type CacheConfig struct {
	// Backend memory | redis
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Key           string `yaml:"key"`
}

// AdminConfig 管理接口鉴权
type AdminConfig struct {
	// Token 为空时管理接口不做鉴权（仅用于本地开发）
	Token string `yaml:"token"`
}

// KnowledgeConfig 知识库收件箱与上传配置
type KnowledgeConfig struct {
	InboxDir       string        `yaml:"inbox_dir"`
	WatchEnabled   bool          `yaml:"watch_enabled"`
	Debounce       time.Duration `yaml:"debounce"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	DefaultSource  string        `yaml:"default_source"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":19970",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			ChatModel:      "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.7,
			MaxTokens:      500,
			Timeout:        60 * time.Second,
		},
		Vector: VectorConfig{
			Backend:    "memory",
			Dimension:  1536,
			Collection: "documents",
			QdrantHost: "localhost",
			QdrantPort: 6334,
		},
		RAG: RAGConfig{
			ChunkMaxLength:  1500,
			ChunkOverlap:    200,
			IngestBatchSize: 5,
			RetrieveLimit:   5,
			MatchThreshold:  float32Ptr(0.5),
		},
		Chat: ChatConfig{
			DeliveryDelay:   time.Second,
			TypingInterval:  500 * time.Millisecond,
			SessionTTL:      2 * time.Hour,
			JanitorInterval: 5 * time.Minute,
			StatusTimeout:   10 * time.Second,
		},
		Catalog: CatalogConfig{
			TTL:     10 * time.Minute,
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			Key:       "comparo:catalog:phones",
		},
		Knowledge: KnowledgeConfig{
			WatchEnabled:   true,
			Debounce:       2 * time.Second,
			MaxUploadBytes: 20 << 20,
			DefaultSource:  "upload",
		},
		Log: log.DefaultConfig(),
	}
}

// Load 加载配置：默认值 → YAML 文件 → .env → 环境变量
func Load() (*Config, error) {
	cfg := NewConfig()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = DataPath("config.yaml")
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// .env 不存在时忽略
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile 读取 YAML 配置文件，文件不存在时保持默认值
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// fillPaths 补全依赖数据目录的路径
func (c *Config) fillPaths() {
	if c.Database.Path == "" {
		c.Database.Path = DataPath("comparo.db")
	}
	if c.Knowledge.InboxDir == "" {
		c.Knowledge.InboxDir = DataPath("inbox")
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Vector.Backend {
	case "memory", "qdrant", "postgres":
	default:
		return fmt.Errorf("unsupported vector backend: %s", c.Vector.Backend)
	}
	if c.Vector.Backend == "postgres" && c.Vector.PostgresDSN == "" {
		return fmt.Errorf("vector backend postgres requires DATABASE_URL")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}
	if c.Vector.Dimension <= 0 {
		return fmt.Errorf("vector dimension must be positive")
	}
	return nil
}

func float32Ptr(v float32) *float32 {
	return &v
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewOpenAIConfig 创建 OpenAI 配置
func NewOpenAIConfig(cfg *Config) *OpenAIConfig {
	return &cfg.OpenAI
}

// NewVectorConfig 创建向量存储配置
func NewVectorConfig(cfg *Config) *VectorConfig {
	return &cfg.Vector
}

// NewRAGConfig 创建 RAG 配置
func NewRAGConfig(cfg *Config) *RAGConfig {
	return &cfg.RAG
}

// NewChatConfig 创建对话配置
func NewChatConfig(cfg *Config) *ChatConfig {
	return &cfg.Chat
}

// NewCatalogConfig 创建目录配置
func NewCatalogConfig(cfg *Config) *CatalogConfig {
	return &cfg.Catalog
}

// NewCacheConfig 创建缓存配置
func NewCacheConfig(cfg *Config) *CacheConfig {
	return &cfg.Cache
}

// NewAdminConfig 创建管理鉴权配置
func NewAdminConfig(cfg *Config) *AdminConfig {
	return &cfg.Admin
}

// NewKnowledgeConfig 创建知识库配置
func NewKnowledgeConfig(cfg *Config) *KnowledgeConfig {
	return &cfg.Knowledge
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}
