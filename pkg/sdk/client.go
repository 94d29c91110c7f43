package nurseally

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/index/flat"
	"github.com/kailas-cloud/nurseally/internal/repository/artifacts"
	"github.com/kailas-cloud/nurseally/internal/transport/lmstudio"
	openaiTransport "github.com/kailas-cloud/nurseally/internal/transport/openai"
	answeruc "github.com/kailas-cloud/nurseally/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/nurseally/internal/usecase/health"
	"github.com/kailas-cloud/nurseally/internal/usecase/retrieval"
	"github.com/kailas-cloud/nurseally/internal/usecase/tablematch"
)

const defaultArtifactsDir = "data"

// Answer sources.
const (
	SourceStructured = "structured"
	SourceModel      = "llm"
	SourceError      = "error"
)

// Internal interfaces, swapped out in tests.
type answerUseCase interface {
	Compose(ctx context.Context, query string) answeruc.Result
}

type retrievalUseCase interface {
	Retrieve(ctx context.Context, text string, topK int) ([]domain.Chunk, error)
}

// Answer is the reply to one question.
type Answer struct {
	Text string
	// Source is SourceStructured, SourceModel or SourceError.
	Source string
	// Chunks were sent to the model as context. Empty for table answers.
	Chunks []Chunk
}

// Chunk is one retrieved passage of the reference document.
type Chunk struct {
	Ordinal int
	Text    string
}

// Client is the nurseally SDK entry point. It is safe for concurrent use.
type Client struct {
	answers   answerUseCase
	retriever retrievalUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads the artifact directory and wires the answer pipeline.
// The provided context is used for the optional readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{artifactsDir: defaultArtifactsDir}
	for _, o := range opts {
		o.apply(cfg)
	}

	bundle, err := loadBundle(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c, llm := wireClient(cfg, bundle, obs)
	if cfg.readinessCheck {
		if err := llm.HealthCheck(ctx); err != nil {
			return nil, fmt.Errorf("nurseally: language model not ready: %w", err)
		}
	}
	return c, nil
}

// loadBundle reads the artifacts. A missing index file is not an error:
// the client then answers from tables and the bare model.
func loadBundle(cfg *clientConfig) (*artifacts.Bundle, error) {
	dir := artifacts.NewDir(cfg.artifactsDir)
	bundle, err := dir.Load(artifacts.LoadOptions{WithIndex: true, Dimensions: cfg.dimensions})
	if errors.Is(err, fs.ErrNotExist) {
		bundle, err = dir.Load(artifacts.LoadOptions{})
	}
	if err != nil {
		return nil, fmt.Errorf("nurseally: load artifacts from %s: %w", cfg.artifactsDir, err)
	}
	return bundle, nil
}

// healthChatBackend is a chat backend that can report its health.
type healthChatBackend interface {
	domain.ChatBackend
	HealthCheck(ctx context.Context) error
}

func wireClient(cfg *clientConfig, bundle *artifacts.Bundle, obs *observer) (*Client, healthChatBackend) {
	var emb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.queryInstruction != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.queryInstruction)
	}

	var vectors retrieval.VectorStore
	if bundle.Index != nil {
		vectors = flat.NewStore(bundle.Index)
	}
	retrievalSvc := retrieval.New(retrieval.Options{Queries: emb, Store: vectors}, bundle.Chunks)

	llm := newChatBackend(cfg)
	answerSvc := answeruc.New(
		tablematch.New(bundle.Table),
		retrievalSvc,
		llm,
		answeruc.Options{
			TopK:        cfg.topK,
			Temperature: cfg.temperature,
			Timeout:     cfg.timeout,
			Persona:     cfg.persona,
			Suggestions: cfg.suggestions,
		},
		nil,
	)

	deps := healthuc.Deps{LLM: llm}
	if vectors != nil {
		deps.Index = vectors
	}
	if hc, ok := cfg.embedder.(healthuc.Checker); ok {
		deps.Embedding = hc
	}

	return &Client{
		answers:   answerSvc,
		retriever: retrievalSvc,
		healthSvc: healthuc.New(deps),
		obs:       obs,
	}, llm
}

func newChatBackend(cfg *clientConfig) healthChatBackend {
	switch {
	case cfg.chat != nil:
		return &chatAdapter{inner: cfg.chat}
	case cfg.llm.hosted:
		return openaiTransport.NewChatBackend(&openaiTransport.Config{
			APIKey:  cfg.llm.apiKey,
			BaseURL: cfg.llm.baseURL,
			Model:   cfg.llm.model,
		})
	default:
		return lmstudio.New(lmstudio.Config{
			BaseURL: cfg.llm.baseURL,
			Model:   cfg.llm.model,
			APIKey:  cfg.llm.apiKey,
			Timeout: cfg.timeout,
		})
	}
}

// Ask answers a question. Backend failures do not return an error:
// they are rendered into Answer.Text with Source set to SourceError.
// A blank question is rejected with ErrInvalidQuery before any backend call.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("ask", start, err)
		if err == nil {
			c.obs.answered(ans.Source)
		}
	}()

	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("ask: %w", ErrInvalidQuery)
	}

	res := c.answers.Compose(ctx, question)
	return Answer{Text: res.Text, Source: res.Path, Chunks: toChunks(res.Chunks)}, nil
}

// Chunks returns up to topK passages nearest to query, nearest first.
func (c *Client) Chunks(ctx context.Context, query string, topK int) (out []Chunk, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chunks", start, err) }()

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("chunks: %w", ErrInvalidQuery)
	}
	found, err := c.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("chunks: %w", err)
	}
	return toChunks(found), nil
}

func toChunks(chunks []domain.Chunk) []Chunk {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]Chunk, len(chunks))
	for i, ch := range chunks {
		out[i] = Chunk{Ordinal: ch.Ordinal, Text: ch.Text}
	}
	return out
}
