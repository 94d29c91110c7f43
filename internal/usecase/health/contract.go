package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks availability of a remote provider (LLM or embedding server).
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// IndexCounter reports how many vectors are searchable.
type IndexCounter interface {
	Len(ctx context.Context) (int, error)
}
