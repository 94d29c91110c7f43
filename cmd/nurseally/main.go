package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/config"
	dbRedis "github.com/kailas-cloud/nurseally/internal/db/redis"
	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/index/flat"
	logpkg "github.com/kailas-cloud/nurseally/internal/logger"
	"github.com/kailas-cloud/nurseally/internal/metrics"
	"github.com/kailas-cloud/nurseally/internal/repository/artifacts"
	"github.com/kailas-cloud/nurseally/internal/repository/chunkindex"
	"github.com/kailas-cloud/nurseally/internal/repository/embcache"
	historyrepo "github.com/kailas-cloud/nurseally/internal/repository/history"
	chiTransport "github.com/kailas-cloud/nurseally/internal/transport/chi"
	"github.com/kailas-cloud/nurseally/internal/transport/lmstudio"
	openaiTransport "github.com/kailas-cloud/nurseally/internal/transport/openai"
	answeruc "github.com/kailas-cloud/nurseally/internal/usecase/answer"
	embeddinguc "github.com/kailas-cloud/nurseally/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/nurseally/internal/usecase/health"
	quizuc "github.com/kailas-cloud/nurseally/internal/usecase/quiz"
	"github.com/kailas-cloud/nurseally/internal/usecase/retrieval"
	"github.com/kailas-cloud/nurseally/internal/usecase/tablematch"
	"github.com/kailas-cloud/nurseally/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting nurseally API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("llm_backend", cfg.LLM.Backend),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("history_backend", cfg.History.Backend),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()

	var store *dbRedis.Store
	if cfg.Database.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err = store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
	}

	dir := artifacts.NewDir(cfg.Artifacts.Dir)
	bundle, vectors := loadArtifacts(ctx, &cfg, dir, store, logger)

	queryEmbedder := buildEmbedder(&cfg, cfg.Embedding.QueryInstruction, store, logger)

	retrievalSvc := retrieval.New(retrieval.Options{
		Queries:   queryEmbedder,
		Store:     vectors,
		Timeout:   cfg.EmbeddingTimeout(),
		Logger:    logger,
	}, bundle.Chunks)

	llm, llmHealth := buildChatBackend(&cfg, logger)

	answerSvc := answeruc.New(
		tablematch.New(bundle.Table),
		retrievalSvc,
		llm,
		answeruc.Options{
			TopK:        cfg.Answer.TopK,
			Temperature: cfg.Answer.Temperature,
			Timeout:     cfg.LLMTimeout(),
			Persona:     cfg.Answer.Persona,
			Suggestions: cfg.Answer.Suggestions,
		},
		logger,
	)

	healthDeps := healthuc.Deps{
		LLM:       llmHealth,
		Embedding: newEmbeddingHealthChecker(queryEmbedder),
	}
	// Pass nil interfaces (not typed nil pointers) for absent components.
	if vectors != nil {
		healthDeps.Index = vectors
	}
	if store != nil {
		healthDeps.DB = store
	}

	server := chiTransport.NewServer(chiTransport.Deps{
		Answers:   answerSvc,
		Retriever: retrievalSvc,
		History:   buildHistory(&cfg, store, logger),
		Health:    healthuc.New(healthDeps),
		Quiz:      quizuc.New(nil),
	}, logger)

	r := chiTransport.NewRouter(server, chiTransport.RouterOptions{APIKeys: cfg.HTTP.APIKeys})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// loadArtifacts reads the ingestion outputs and opens the vector store they match.
// A missing flat index leaves the store nil: answers then come from tables and the bare model.
func loadArtifacts(
	ctx context.Context, cfg *config.Config, dir artifacts.Dir, store *dbRedis.Store, logger *zap.Logger,
) (*artifacts.Bundle, retrieval.VectorStore) {
	withIndex := cfg.Index.Backend == config.IndexFlat
	bundle, err := dir.Load(artifacts.LoadOptions{WithIndex: withIndex, Dimensions: cfg.Embedding.Dimensions})
	if withIndex && errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Index file not found, run the ingest command first",
			zap.String("dir", dir.Path()))
		bundle, err = dir.Load(artifacts.LoadOptions{})
		withIndex = false
	}
	if err != nil {
		logger.Fatal("Failed to load artifacts", zap.String("dir", dir.Path()), zap.Error(err))
	}
	logger.Info("Artifacts loaded",
		zap.String("dir", dir.Path()),
		zap.Int("chunks", len(bundle.Chunks)),
		zap.Int("rows", len(bundle.Rows)),
		zap.Int("table_entries", bundle.Table.Len()),
	)

	switch {
	case withIndex:
		return bundle, flat.NewStore(bundle.Index)
	case cfg.Index.Backend == config.IndexRedis:
		repo, err := chunkindex.New(store, cfg.Embedding.Dimensions, cfg.Index.Metric)
		if err != nil {
			logger.Fatal("Failed to create chunk index", zap.Error(err))
		}
		if err = repo.Verify(ctx, len(bundle.Chunks)); err != nil {
			logger.Fatal("Chunk index does not match artifacts", zap.Error(err))
		}
		return bundle, repo
	default:
		return bundle, nil
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg *config.Config, instruction string, store *dbRedis.Store, logger *zap.Logger,
) domain.Embedder {
	emb := cfg.Embedding

	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     emb.APIKey,
		BaseURL:    emb.BaseURL,
		Model:      emb.Model,
		Dimensions: emb.Dimensions,
		Provider:   emb.Provider,
		Logger:     logger,
	})

	// Cached
	var embedder domain.Embedder = base
	if emb.Cache && store != nil {
		embedder = embcache.New(base, store, embcache.Options{
			Model: emb.Model,
			TTL:   time.Duration(emb.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, emb.Provider, emb.Model, logger)

	// Instruction prefix (outermost, so the cache key includes it)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// buildChatBackend selects the language model backend.
func buildChatBackend(cfg *config.Config, logger *zap.Logger) (domain.ChatBackend, healthuc.Checker) {
	if cfg.LLM.Backend == config.LLMHosted {
		b := openaiTransport.NewChatBackend(&openaiTransport.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Logger:  logger,
		})
		return b, b
	}
	b := lmstudio.New(lmstudio.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLMTimeout(),
		Logger:  logger,
	})
	return b, b
}

// buildHistory returns the question log, or nil when history is disabled.
func buildHistory(cfg *config.Config, store *dbRedis.Store, logger *zap.Logger) chiTransport.HistoryLog {
	switch cfg.History.Backend {
	case config.HistoryFile:
		logger.Info("History stored in file", zap.String("path", cfg.History.Path))
		return historyrepo.NewFileLog(cfg.History.Path)
	case config.HistoryRedis:
		return historyrepo.NewRedisLog(store)
	default:
		return nil
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
