package history

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

var historyKey = domain.KeyPrefix + "history"

// store is the consumer interface for the Redis log (ISP).
type store interface {
	RPush(ctx context.Context, key string, values ...[]byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// RedisLog keeps exchanges as JSON elements of a Redis list.
type RedisLog struct {
	store store
	key   string
}

// NewRedisLog creates a list-backed log.
func NewRedisLog(s store) *RedisLog {
	return &RedisLog{store: s, key: historyKey}
}

// Append pushes an exchange onto the tail of the list.
func (l *RedisLog) Append(ctx context.Context, e domain.Exchange) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}
	if err := l.store.RPush(ctx, l.key, data); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first. limit <= 0 returns everything.
func (l *RedisLog) Recent(ctx context.Context, limit int) ([]domain.Exchange, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := l.store.LRange(ctx, l.key, start, -1)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	out := make([]domain.Exchange, 0, len(raw))
	for _, b := range raw {
		var e domain.Exchange
		if err := json.Unmarshal(b, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	slices.Reverse(out)
	return out, nil
}
