// @title           Bahamas Open Data API
// @version         1.0
// @description     Government budget document ingestion and question answering
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/data/redisstore"
	"github.com/salutethegenius/bahamasopendata/internal/handlers"
	"github.com/salutethegenius/bahamasopendata/internal/mcpserver"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/indexer"
	"github.com/salutethegenius/bahamasopendata/internal/rag"
	"github.com/salutethegenius/bahamasopendata/internal/rag/embedding/openaiembed"
	"github.com/salutethegenius/bahamasopendata/internal/rag/llm"
	"github.com/salutethegenius/bahamasopendata/internal/rag/llm/gemini"
	"github.com/salutethegenius/bahamasopendata/internal/rag/llm/openaichat"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb/qdrantdb"
	"github.com/salutethegenius/bahamasopendata/internal/registry"
	"github.com/salutethegenius/bahamasopendata/internal/server"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

func main() {
	logging.Init(config.IS_PROD, config.LOG_LEVEL_PROD)
	log := logging.New("main")

	var (
		listenAddr string
		runMCP     bool
	)
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address (overrides LISTEN_ADDR)")
	flag.BoolVar(&runMCP, "mcp", false, "serve the MCP tool over stdio instead of HTTP")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	for _, dir := range []string{cfg.RawDir, cfg.ProcessedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("could not create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	serviceCtx, closeServices := context.WithCancel(context.Background())
	defer closeServices()

	var store registry.RecordStore
	if redis := redisstore.Connect(serviceCtx, cfg.RedisAddr, config.RedisRegistryDB); redis != nil {
		defer redis.Close()
		store = registry.NewRedisStore(redis)
	} else {
		log.Warn("redis offline, registry will not survive restarts")
		store = registry.NewMemoryStore()
	}
	reg := registry.New(store)

	vectorDB, err := qdrantdb.Connect(qdrantdb.Config{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		APIKey:     cfg.QdrantAPIKey,
		UseTLS:     config.QdrantUseTLS,
		Collection: cfg.Collection,
		Dimension:  uint64(config.EmbeddingDimensions),
	})
	if err != nil {
		log.Error("qdrant unavailable", "error", err)
		os.Exit(1)
	}
	defer vectorDB.Close()
	if err := vectorDB.EnsureCollection(serviceCtx); err != nil {
		log.Error("qdrant collection setup failed", "collection", cfg.Collection, "error", err)
		os.Exit(1)
	}

	embedder := openaiembed.New(cfg.OpenAIAPIKey, cfg.EmbeddingModel, int(config.EmbeddingDimensions))

	var provider llm.Provider
	switch cfg.LLMProvider {
	case "gemini":
		provider, err = gemini.New(serviceCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error("gemini client failed", "error", err)
			os.Exit(1)
		}
	default:
		provider = openaichat.New(cfg.OpenAIAPIKey, cfg.ChatModel)
	}

	ragService := rag.NewService(embedder, vectorDB, provider)

	if runMCP {
		log.Info("serving MCP over stdio")
		if err := mcpserver.New(ragService).Run(serviceCtx); err != nil {
			log.Error("mcp server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	pipe := pipeline.New(reg, extract.New(), indexer.New(embedder, vectorDB), cfg.RawDir, cfg.ProcessedDir)

	srv := server.New(cfg.ListenAddr,
		handlers.NewAskHandler(ragService),
		handlers.NewDocumentsHandler(reg, pipe, cfg.RawDir),
	)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-gracefulShutdown
		log.Info("shutting down", "signal", sig.String())
		srv.Shutdown()
		closeServices()
	}()

	if err := srv.Run(); err != nil {
		log.Error("server crashed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
