// Command ingest extracts a reference PDF into the artifacts the API server reads.
package main

import (
	"context"
	"flag"
	"fmt"
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
	openaiTransport "github.com/kailas-cloud/nurseally/internal/transport/openai"
	"github.com/kailas-cloud/nurseally/internal/transport/pdf"
	embeddinguc "github.com/kailas-cloud/nurseally/internal/usecase/embedding"
	ingestuc "github.com/kailas-cloud/nurseally/internal/usecase/ingest"
	"github.com/kailas-cloud/nurseally/internal/usecase/retrieval"
)

func main() {
	_ = godotenv.Load()

	env := flag.String("env", config.GetEnv(), "config environment (local, prod)")
	pdfPath := flag.String("pdf", "", "reference PDF (default: ingest.pdf from config)")
	outDir := flag.String("out", "", "artifact directory (default: artifacts.dir from config)")
	flag.Parse()

	cfg, err := config.Load(*env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *pdfPath != "" {
		cfg.Ingest.PDF = *pdfPath
	}
	if *outDir != "" {
		cfg.Artifacts.Dir = *outDir
	}

	logger, err := logpkg.NewLogger(*env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterEmbeddingMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, &cfg, logger); err != nil {
		logger.Error("Ingestion failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: logger synced above
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var store *dbRedis.Store
	if cfg.Database.Enabled {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return fmt.Errorf("create database store: %w", err)
		}
		defer s.Close()
		if err = s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
		store = s
	}

	var (
		vectors  retrieval.VectorStore
		snapshot ingestuc.Snapshotter
	)
	switch cfg.Index.Backend {
	case config.IndexRedis:
		repo, err := chunkindex.New(store, cfg.Embedding.Dimensions, cfg.Index.Metric)
		if err != nil {
			return fmt.Errorf("create chunk index: %w", err)
		}
		vectors = repo
	default:
		metric, err := flat.ParseMetric(cfg.Index.Metric)
		if err != nil {
			return err
		}
		flatStore := flat.NewStore(flat.New(cfg.Embedding.Dimensions, metric))
		vectors, snapshot = flatStore, flatStore
	}

	builder := retrieval.New(retrieval.Options{
		Documents: buildDocumentEmbedder(cfg, store, logger),
		Store:     vectors,
		BatchSize: cfg.Embedding.BatchSize,
		Logger:    logger,
	}, nil)

	svc := ingestuc.New(
		pdf.NewExtractor(logger),
		builder,
		artifacts.NewDir(cfg.Artifacts.Dir),
		snapshot,
		cfg.Ingest.MinLineLen,
		logger,
	)

	report, err := svc.Run(ctx, cfg.Ingest.PDF)
	if err != nil {
		return err
	}

	logger.Info("Ingestion complete",
		zap.String("pdf", cfg.Ingest.PDF),
		zap.String("dir", cfg.Artifacts.Dir),
		zap.String("index_backend", cfg.Index.Backend),
		zap.Int("pages", report.Pages),
		zap.Int("chunks", report.Chunks),
		zap.Int("rows", report.Rows),
		zap.Duration("duration", report.Duration),
	)
	return nil
}

// buildDocumentEmbedder assembles OpenAI -> Cached -> Instrumented. Corpus chunks carry no instruction.
func buildDocumentEmbedder(cfg *config.Config, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	emb := cfg.Embedding

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     emb.APIKey,
		BaseURL:    emb.BaseURL,
		Model:      emb.Model,
		Dimensions: emb.Dimensions,
		Provider:   emb.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if emb.Cache && store != nil {
		embedder = embcache.New(base, store, embcache.Options{
			Model: emb.Model,
			TTL:   time.Duration(emb.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, emb.Provider, emb.Model, logger)
}
