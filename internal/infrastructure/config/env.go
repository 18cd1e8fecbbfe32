package config

import (
	"os"
	"strconv"
	"time"
)

// 环境变量名
const (
	EnvConfigFile = "COMPARO_CONFIG"
	EnvHTTPPort   = "COMPARO_HTTP_PORT"
	EnvDBPath     = "COMPARO_DB_PATH"
	EnvInboxDir   = "COMPARO_INBOX_DIR"

	EnvOpenAIBaseURL        = "OPENAI_BASE_URL"
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvOpenAIChatModel      = "OPENAI_CHAT_MODEL"
	EnvOpenAIEmbeddingModel = "OPENAI_EMBEDDING_MODEL"

	EnvVectorBackend   = "VECTOR_BACKEND"
	EnvVectorDimension = "VECTOR_DIMENSION"
	EnvQdrantHost      = "QDRANT_HOST"
	EnvQdrantPort      = "QDRANT_PORT"
	EnvDatabaseURL     = "DATABASE_URL"

	EnvCacheBackend  = "CACHE_BACKEND"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvCatalogURL   = "CATALOG_URL"
	EnvAdminToken   = "ADMIN_TOKEN"
	EnvWatchEnabled = "KNOWLEDGE_WATCH"
	EnvSessionTTL   = "CHAT_SESSION_TTL"
)

// applyEnv 用环境变量覆盖配置
func (c *Config) applyEnv() {
	setString(&c.Server.HTTPPort, EnvHTTPPort)
	setString(&c.Database.Path, EnvDBPath)
	setString(&c.Knowledge.InboxDir, EnvInboxDir)

	setString(&c.OpenAI.BaseURL, EnvOpenAIBaseURL)
	setString(&c.OpenAI.APIKey, EnvOpenAIAPIKey)
	setString(&c.OpenAI.ChatModel, EnvOpenAIChatModel)
	setString(&c.OpenAI.EmbeddingModel, EnvOpenAIEmbeddingModel)

	setString(&c.Vector.Backend, EnvVectorBackend)
	setInt(&c.Vector.Dimension, EnvVectorDimension)
	setString(&c.Vector.QdrantHost, EnvQdrantHost)
	setInt(&c.Vector.QdrantPort, EnvQdrantPort)
	setString(&c.Vector.PostgresDSN, EnvDatabaseURL)

	setString(&c.Cache.Backend, EnvCacheBackend)
	setString(&c.Cache.RedisAddr, EnvRedisAddr)
	setString(&c.Cache.RedisPassword, EnvRedisPassword)
	setInt(&c.Cache.RedisDB, EnvRedisDB)

	setString(&c.Catalog.URL, EnvCatalogURL)
	setString(&c.Admin.Token, EnvAdminToken)
	setBool(&c.Knowledge.WatchEnabled, EnvWatchEnabled)
	setDuration(&c.Chat.SessionTTL, EnvSessionTTL)

	c.Log.ApplyEnv()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
