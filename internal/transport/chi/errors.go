package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/logger"
	"github.com/kailas-cloud/nurseally/internal/usecase/calculator"
	"github.com/kailas-cloud/nurseally/internal/usecase/quiz"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned to clients.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeProviderError    ErrorCode = "embedding_provider_error"
	CodeLLMBackend       ErrorCode = "llm_backend_error"
	CodeIndexNotLoaded   ErrorCode = "index_not_loaded"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(calculator.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(quiz.ErrAnswerCount, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrIndexNotLoaded, http.StatusServiceUnavailable, CodeIndexNotLoaded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrLLMBackend, http.StatusBadGateway, CodeLLMBackend),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		calculator.ErrInvalidInput,
		quiz.ErrAnswerCount,
		domain.ErrIndexNotLoaded,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMBackend,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
