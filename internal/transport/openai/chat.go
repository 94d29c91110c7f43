package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/metrics"
)

const backendHosted = "hosted"

// ChatBackend implements domain.ChatBackend against a hosted chat-completions API.
type ChatBackend struct {
	client *openai.Client
	model  string
	user   string
	logger *zap.Logger
}

// NewChatBackend creates a hosted chat backend. Provider-specific fields of cfg are ignored.
func NewChatBackend(cfg *Config) *ChatBackend {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatBackend{
		client: newClient(cfg),
		model:  cfg.Model,
		user:   cfg.User,
		logger: logger,
	}
}

// Complete sends messages and returns the first choice's content.
func (b *ChatBackend) Complete(ctx context.Context, messages []domain.Message, temperature float64) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
		Temperature: wireTemperature(temperature),
		User:        b.user,
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	start := time.Now()
	resp, err := b.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(backendHosted, b.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(backendHosted, b.model, errorType(err)).Inc()
		return "", parseAPIError("chat", err, domain.ErrLLMBackend)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(backendHosted, b.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(backendHosted, b.model, "empty_response").Inc()
		return "", fmt.Errorf("chat completion: %w", domain.ErrEmptyCompletion)
	}

	metrics.LLMRequestsTotal.WithLabelValues(backendHosted, b.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(backendHosted, b.model).Observe(duration.Seconds())

	b.logger.Debug("Chat completion",
		zap.String("model", b.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (b *ChatBackend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// wireTemperature maps 0 to the smallest positive float32. go-openai drops a
// zero temperature from the request and the API would apply its own default.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "api_error"
	}
}
