// Package lmstudio is the chat backend for a local OpenAI-compatible server such as LM Studio.
package lmstudio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/metrics"
)

// Defaults of a stock LM Studio install.
const (
	DefaultBaseURL = "http://127.0.0.1:1234/v1"
	DefaultModel   = "tinyllama-1.1b-chat-v1.0"
	DefaultAPIKey  = "lm-studio"

	backendName = "local"
)

// Config holds the local server settings.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Backend implements domain.ChatBackend over openai-go. Retries are disabled.
type Backend struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// New creates a local chat backend, filling unset fields with LM Studio defaults.
func New(cfg Config) *Backend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Backend{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Complete sends one chat-completion request and returns the first choice's content.
func (b *Backend) Complete(ctx context.Context, messages []domain.Message, temperature float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       b.model,
		Messages:    toParams(messages),
		Temperature: openai.Float(temperature),
	}

	start := time.Now()
	resp, err := b.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(backendName, b.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(backendName, b.model, errorType(err)).Inc()
		return "", wrapError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(backendName, b.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(backendName, b.model, "empty_response").Inc()
		return "", fmt.Errorf("local completion: %w", domain.ErrEmptyCompletion)
	}

	metrics.LLMRequestsTotal.WithLabelValues(backendName, b.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(backendName, b.model).Observe(duration.Seconds())

	b.logger.Debug("Local completion",
		zap.String("model", b.model),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck lists the models served by the local server.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.Models.List(ctx); err != nil {
		return fmt.Errorf("list local models: %w", err)
	}
	return nil
}

func toParams(messages []domain.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = http.StatusText(apiErr.StatusCode)
		}
		return fmt.Errorf("local server error %d: %s: %w", apiErr.StatusCode, detail, domain.ErrLLMBackend)
	}
	return fmt.Errorf("local request: %w: %w", domain.ErrLLMBackend, err)
}

func errorType(err error) string {
	var apiErr *openai.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "connection_error"
	}
}
