package nurseally

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type llmSettings struct {
	hosted  bool
	baseURL string
	apiKey  string
	model   string
}

type clientConfig struct {
	artifactsDir string

	embedder         Embedder
	dimensions       int
	queryInstruction string

	chat ChatModel
	llm  llmSettings

	topK        int
	temperature *float64
	timeout     time.Duration
	persona     string
	suggestions []string

	readinessCheck bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithArtifacts sets the directory written by the ingest command. Default: "data".
func WithArtifacts(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.artifactsDir = dir
	})
}

// WithEmbedder sets the query embedding provider.
// It must use the model the artifacts were built with.
// Without an embedder, model answers get no retrieved context.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingServer embeds queries through an OpenAI-compatible /embeddings endpoint.
func WithEmbeddingServer(baseURL, apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = newServerEmbedder(baseURL, apiKey, model, dimensions)
		c.dimensions = dimensions
	})
}

// WithQueryInstruction prefixes every query before it is embedded.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithChatModel sets a custom language model.
func WithChatModel(m ChatModel) Option {
	return optionFunc(func(c *clientConfig) {
		c.chat = m
	})
}

// WithLMStudio uses a local LM Studio server. Empty arguments take the LM Studio defaults.
// This is the default when no chat model is configured.
func WithLMStudio(baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llm = llmSettings{baseURL: baseURL, model: model}
	})
}

// WithHostedModel uses a hosted OpenAI-compatible chat-completions API.
func WithHostedModel(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llm = llmSettings{hosted: true, baseURL: baseURL, apiKey: apiKey, model: model}
	})
}

// WithTopK sets how many chunks are retrieved as model context. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithTemperature sets the sampling temperature. Default: 0.7.
func WithTemperature(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = &t
	})
}

// WithTimeout bounds each model call. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithPersona replaces the system prompt.
func WithPersona(persona string) Option {
	return optionFunc(func(c *clientConfig) {
		c.persona = persona
	})
}

// WithSuggestions replaces the follow-up questions appended to model answers.
// Call with no arguments to disable them.
func WithSuggestions(suggestions ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.suggestions = append([]string{}, suggestions...)
	})
}

// WithReadinessCheck makes New fail when the language model is unreachable.
func WithReadinessCheck() Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessCheck = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
