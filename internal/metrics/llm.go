package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer paths.
const (
	PathStructured = "structured"
	PathLLM        = "llm"
	PathError      = "error"
)

// Language-model and answer Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"backend", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"backend", "model"},
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Total chat completion errors",
		},
		[]string{"backend", "model", "error_type"},
	)

	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers by the path that produced them",
		},
		[]string{"path"},
	)

	RetrievalFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_failures_total",
			Help:      "Questions answered with an empty context because retrieval failed",
		},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers language-model and answer metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(AnswersTotal)
	prometheus.MustRegister(RetrievalFailuresTotal)
	llmMetricsRegistered = true
}
