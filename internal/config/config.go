package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type contextKey string

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo

	TRACE_ID_KEY contextKey = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// embeddings must match the space the index was built with
	EmbeddingDimensions   int64 = 1536
	DefaultEmbeddingModel       = "text-embedding-3-small"
	DefaultChatModel            = "gpt-4o-mini"
	DefaultGeminiModel          = "gemini-2.5-flash-lite-preview-09-2025"

	DefaultCollection = "national-pulse"

	// ingestion pipeline
	ChunkSize       = 1000
	EmbedBatchSize  = 50
	UpsertBatchSize = 100
	EmbedBatchDelay = 500 * time.Millisecond
	SnippetMaxChars = 1000
	PageExtractWait = 10 * time.Second

	// retrieval
	TopK           = 5
	CitationChars  = 200
	AskTimeout     = 30 * time.Second
	OutboundReqTTL = 30 * time.Second

	// server timeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	// qdrant
	QdrantHost     = "127.0.0.1"
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false

	// redis
	RedisAddr        = "127.0.0.1:6379"
	RedisRegistryDB  = 0
	RedisDialTimeout = 3 * time.Second
)

// Config holds the environment-dependent settings. Everything that is a
// tuning knob rather than a credential stays a constant above.
type Config struct {
	ListenAddr string

	RedisAddr string

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	Collection   string

	OpenAIAPIKey   string
	GeminiAPIKey   string
	LLMProvider    string // "openai" or "gemini"
	EmbeddingModel string
	ChatModel      string
	GeminiModel    string

	DataDir      string
	RawDir       string
	ProcessedDir string
}

// Load reads the environment, merging in a .env file when present.
// It fails only on genuinely unusable setups: retrieval cannot work
// without an embedding provider key.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     envOr("LISTEN_ADDR", ServerListenAddr),
		RedisAddr:      envOr("REDIS_ADDR", RedisAddr),
		QdrantHost:     envOr("QDRANT_HOST", QdrantHost),
		QdrantPort:     envIntOr("QDRANT_PORT", QdrantGrpcPort),
		QdrantAPIKey:   os.Getenv("QDRANT_API_KEY"),
		Collection:     envOr("QDRANT_COLLECTION", DefaultCollection),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		LLMProvider:    envOr("LLM_PROVIDER", "openai"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", DefaultEmbeddingModel),
		ChatModel:      envOr("CHAT_MODEL", DefaultChatModel),
		GeminiModel:    envOr("GEMINI_MODEL", DefaultGeminiModel),
		DataDir:        envOr("DATA_DIR", "data"),
	}
	cfg.RawDir = filepath.Join(cfg.DataDir, "raw")
	cfg.ProcessedDir = filepath.Join(cfg.DataDir, "processed")

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.LLMProvider == "gemini" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("LLM_PROVIDER=gemini but GEMINI_API_KEY not set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
