// Package answer composes the reply to a nursing question.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/logger"
	"github.com/kailas-cloud/nurseally/internal/metrics"
)

// Defaults for the fallback path.
const (
	DefaultTopK        = 5
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second

	Persona = "You are Nurse Ally, a caring and knowledgeable pediatric assistant."

	BackendErrorPrefix     = "⚠️ Backend error: "
	EmptyCompletionMessage = "⚠️ Sorry, I couldn’t generate a response."
	SuggestionsHeader      = "\n\n💡 Suggested follow-ups:\n- "
)

// DefaultSuggestions are appended to every successful model answer.
var DefaultSuggestions = []string{
	"Would you like to know normal HR for the same age?",
	"Do you want to view fluid calculation?",
	"Need the CPR steps for this case?",
}

// Options tunes the fallback path. Zero values take the defaults.
type Options struct {
	TopK int
	// Temperature is sent as is when set, including zero.
	Temperature *float64
	Timeout     time.Duration
	Persona     string
	Suggestions []string
}

// Result is a composed answer plus the path that produced it.
type Result struct {
	Text   string
	Path   string
	Chunks []domain.Chunk
}

// Service decides between the structured and the generative answer.
type Service struct {
	matcher   StructuredMatcher
	retriever Retriever
	llm       domain.ChatBackend
	opts      Options
	logger    *zap.Logger
}

// New creates an answer service. retriever may be nil, leaving the model without context.
func New(
	matcher StructuredMatcher, retriever Retriever, llm domain.ChatBackend,
	opts Options, logger *zap.Logger,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Temperature == nil {
		t := DefaultTemperature
		opts.Temperature = &t
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Persona == "" {
		opts.Persona = Persona
	}
	if opts.Suggestions == nil {
		opts.Suggestions = DefaultSuggestions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{matcher: matcher, retriever: retriever, llm: llm, opts: opts, logger: logger}
}

// Ask returns the answer text. It never fails: problems surface as a warning string.
func (s *Service) Ask(ctx context.Context, query string) string {
	return s.Compose(ctx, query).Text
}

// Compose answers query, preferring a structured table match over the model.
func (s *Service) Compose(ctx context.Context, query string) (res Result) {
	log := s.log(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Answer panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = Result{Text: BackendErrorPrefix + fmt.Sprint(r), Path: metrics.PathError}
		}
		metrics.AnswersTotal.WithLabelValues(res.Path).Inc()
	}()

	if s.matcher != nil {
		if text, ok := s.matcher.Answer(query); ok {
			log.Debug("Structured answer", zap.String("answer", text))
			return Result{Text: text, Path: metrics.PathStructured}
		}
	}

	chunks := s.retrieve(ctx, query)
	messages := BuildPrompt(s.opts.Persona, JoinContext(chunks), query)

	llmCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	reply, err := s.llm.Complete(llmCtx, messages, *s.opts.Temperature)
	switch {
	case errors.Is(err, domain.ErrEmptyCompletion):
		log.Warn("Model returned no choices")
		return Result{Text: EmptyCompletionMessage, Path: metrics.PathError, Chunks: chunks}
	case err != nil:
		log.Error("Chat completion failed", zap.Error(err))
		return Result{Text: BackendErrorPrefix + err.Error(), Path: metrics.PathError, Chunks: chunks}
	}

	return Result{
		Text:   reply + FormatSuggestions(s.opts.Suggestions),
		Path:   metrics.PathLLM,
		Chunks: chunks,
	}
}

// retrieve degrades every failure to an empty context.
func (s *Service) retrieve(ctx context.Context, query string) []domain.Chunk {
	if s.retriever == nil {
		return nil
	}
	chunks, err := s.retriever.Retrieve(ctx, query, s.opts.TopK)
	if err != nil {
		metrics.RetrievalFailuresTotal.Inc()
		s.log(ctx).Warn("Retrieval failed, answering without context", zap.Error(err))
		return nil
	}
	return chunks
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// JoinContext concatenates chunk texts, nearest first, separated by a blank line.
func JoinContext(chunks []domain.Chunk) string {
	return strings.Join(domain.Texts(chunks), "\n\n")
}

// BuildPrompt returns the two-message prompt sent to the model.
func BuildPrompt(persona, retrieved, query string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: persona},
		{Role: domain.RoleUser, Content: retrieved + "\n\nQuestion: " + query},
	}
}

// FormatSuggestions renders the follow-up block, or nothing for no suggestions.
func FormatSuggestions(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return SuggestionsHeader + strings.Join(suggestions, "\n- ")
}
