// Package chi is the HTTP relay in front of the answer composer.
package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/logger"
	"github.com/kailas-cloud/nurseally/internal/metrics"
	"github.com/kailas-cloud/nurseally/internal/usecase/answer"
	"github.com/kailas-cloud/nurseally/internal/usecase/calculator"
	healthuc "github.com/kailas-cloud/nurseally/internal/usecase/health"
	"github.com/kailas-cloud/nurseally/internal/usecase/quiz"
)

const (
	defaultHistoryLimit = 5
	maxHistoryLimit     = 100
	debugTopK           = 5
	previewRunes        = 300
	maxBodyBytes        = 1 << 20

	answerPathHeader = "X-Answer-Path"
)

// Answerer composes replies. Compose never fails; failures are rendered into the text.
type Answerer interface {
	Compose(ctx context.Context, query string) answer.Result
}

// ChunkRetriever returns the chunks nearest to a query.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, text string, topK int) ([]domain.Chunk, error)
}

// HistoryLog records answered questions.
type HistoryLog interface {
	Append(ctx context.Context, e domain.Exchange) error
	Recent(ctx context.Context, limit int) ([]domain.Exchange, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Deps are the services behind the routes. History and Retriever may be nil.
type Deps struct {
	Answers   Answerer
	Retriever ChunkRetriever
	History   HistoryLog
	Health    HealthChecker
	Quiz      *quiz.Service
}

// Server holds the HTTP handlers.
type Server struct {
	deps          Deps
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Quiz == nil {
		deps.Quiz = quiz.New(nil)
	}
	return &Server{
		deps:          deps,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	APIKeys []string
}

// NewRouter builds the chi router with the standard middleware chain and all routes.
func NewRouter(s *Server, opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Post("/ask", s.Ask)
	r.Get("/history", s.History)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/calculator", s.Calculate)
	r.Get("/quiz", s.Quiz)
	r.Post("/quiz/grade", s.GradeQuiz)
	r.Post("/debug/chunks", s.DebugChunks)
	return r
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Response string `json:"response"`
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	res := s.deps.Answers.Compose(r.Context(), req.Query)

	if s.deps.History != nil {
		if err := s.deps.History.Append(r.Context(), domain.Exchange{Question: req.Query, Answer: res.Text}); err != nil {
			logger.FromContextOr(r.Context(), s.logger).Warn("Failed to save history", zap.Error(err))
		}
	}

	w.Header().Set(answerPathHeader, res.Path)
	writeJSON(w, http.StatusOK, askResponse{Response: res.Text})
}

type historyItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type historyResponse struct {
	Items []historyItem `json:"items"`
}

// History handles GET /history?limit=N.
func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit))
			return
		}
		limit = n
	}

	resp := historyResponse{Items: []historyItem{}}
	if s.deps.History == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	entries, err := s.deps.History.Recent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	for _, e := range entries {
		resp.Items = append(resp.Items, historyItem{Question: e.Question, Answer: e.Answer})
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: string(healthuc.Healthy), Checks: map[string]string{}})
		return
	}
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type calculatorRequest struct {
	WeightKg *float64 `json:"weight_kg"`
	AgeYears *int     `json:"age_years"`
}

type calculatorResponse struct {
	FluidMLPerDay *float64 `json:"fluid_ml_per_day,omitempty"`
	Fluid         string   `json:"fluid,omitempty"`
	MinSystolicBP *int     `json:"min_systolic_bp,omitempty"`
	BP            string   `json:"bp,omitempty"`
}

// Calculate handles POST /calculator.
func (s *Server) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculatorRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.WeightKg == nil && req.AgeYears == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "weight_kg or age_years is required")
		return
	}

	var resp calculatorResponse
	if req.WeightKg != nil {
		ml, err := calculator.DailyFluid(*req.WeightKg)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.FluidMLPerDay = &ml
		resp.Fluid = calculator.FormatFluid(ml)
	}
	if req.AgeYears != nil {
		bp, err := calculator.MinSystolicBP(*req.AgeYears)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.MinSystolicBP = &bp
		resp.BP = calculator.FormatBP(bp)
	}
	writeJSON(w, http.StatusOK, resp)
}

type quizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type quizResponse struct {
	Questions []quizQuestion `json:"questions"`
}

// Quiz handles GET /quiz. Answers are never sent.
func (s *Server) Quiz(w http.ResponseWriter, _ *http.Request) {
	bank := s.deps.Quiz.Questions()
	resp := quizResponse{Questions: make([]quizQuestion, len(bank))}
	for i, q := range bank {
		resp.Questions[i] = quizQuestion{Question: q.Text, Options: q.Options}
	}
	writeJSON(w, http.StatusOK, resp)
}

type gradeRequest struct {
	Answers []string `json:"answers"`
}

type gradeItem struct {
	Question      string `json:"question"`
	Given         string `json:"given"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

type gradeResponse struct {
	Results []gradeItem `json:"results"`
	Score   int         `json:"score"`
	Total   int         `json:"total"`
}

// GradeQuiz handles POST /quiz/grade.
func (s *Server) GradeQuiz(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.deps.Quiz.Grade(req.Answers)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := gradeResponse{Results: make([]gradeItem, len(res.Grades)), Score: res.Score, Total: res.Total}
	for i, g := range res.Grades {
		resp.Results[i] = gradeItem{Question: g.Question, Given: g.Given, CorrectAnswer: g.Correct, Correct: g.OK}
	}
	writeJSON(w, http.StatusOK, resp)
}

type debugChunk struct {
	Ordinal int    `json:"ordinal"`
	Preview string `json:"preview"`
}

type debugResponse struct {
	Chunks []debugChunk `json:"chunks"`
}

// DebugChunks handles POST /debug/chunks: the chunks the model would see for a query.
func (s *Server) DebugChunks(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}
	if s.deps.Retriever == nil {
		s.handleDomainError(w, r, domain.ErrIndexNotLoaded)
		return
	}

	chunks, err := s.deps.Retriever.Retrieve(r.Context(), req.Query, debugTopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := debugResponse{Chunks: make([]debugChunk, len(chunks))}
	for i, c := range chunks {
		resp.Chunks[i] = debugChunk{Ordinal: c.Ordinal, Preview: preview(c.Text)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}
