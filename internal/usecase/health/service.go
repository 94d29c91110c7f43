package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckEmpty indicates a reachable component without data.
	CheckEmpty CheckResult = "empty"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as report keys.
const (
	ComponentIndex     = "index"
	ComponentLLM       = "llm"
	ComponentEmbedding = "embedding"
	ComponentDatabase  = "database"
)

const defaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Deps lists the components to probe. Nil fields are skipped.
type Deps struct {
	Index     IndexCounter
	LLM       Checker
	Embedding Checker
	DB        DBPinger
}

// Service coordinates health checks.
type Service struct {
	deps    Deps
	timeout time.Duration
}

// New creates a Service.
func New(deps Deps) *Service {
	return &Service{deps: deps, timeout: defaultCheckTimeout}
}

// Check runs health checks against all configured components.
// An empty index still answers from tables and the model, so it does not degrade the service.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	checks := make(map[string]CheckResult)

	if s.deps.Index != nil {
		n, err := s.deps.Index.Len(ctx)
		switch {
		case err != nil:
			checks[ComponentIndex] = CheckError
		case n == 0:
			checks[ComponentIndex] = CheckEmpty
		default:
			checks[ComponentIndex] = CheckOK
		}
	}
	if s.deps.LLM != nil {
		checks[ComponentLLM] = result(s.deps.LLM.HealthCheck(ctx))
	}
	if s.deps.Embedding != nil {
		checks[ComponentEmbedding] = result(s.deps.Embedding.HealthCheck(ctx))
	}
	if s.deps.DB != nil {
		checks[ComponentDatabase] = result(s.deps.DB.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
