package history

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	rpushFn  func(ctx context.Context, key string, values ...[]byte) error
	lrangeFn func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

func (m *mockStore) RPush(ctx context.Context, key string, values ...[]byte) error {
	if m.rpushFn != nil {
		return m.rpushFn(ctx, key, values...)
	}
	return nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func TestRedisLog_Append(t *testing.T) {
	ms := &mockStore{}
	var gotKey, gotVal string
	ms.rpushFn = func(_ context.Context, key string, values ...[]byte) error {
		gotKey = key
		gotVal = string(values[0])
		return nil
	}

	l := NewRedisLog(ms)
	if err := l.Append(context.Background(), domain.Exchange{Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if gotKey != "nurseally:history" {
		t.Errorf("key = %q", gotKey)
	}
	if gotVal != `{"question":"q","answer":"a"}` {
		t.Errorf("value = %s", gotVal)
	}
}

func TestRedisLog_RecentNewestFirst(t *testing.T) {
	ms := &mockStore{}
	var gotStart, gotStop int64
	ms.lrangeFn = func(_ context.Context, _ string, start, stop int64) ([][]byte, error) {
		gotStart, gotStop = start, stop
		return [][]byte{
			[]byte(`{"question":"q1","answer":"a1"}`),
			[]byte(`garbage`),
			[]byte(`{"question":"q2","answer":"a2"}`),
		}, nil
	}

	got, err := NewRedisLog(ms).Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if gotStart != -5 || gotStop != -1 {
		t.Errorf("range = [%d, %d], want [-5, -1]", gotStart, gotStop)
	}
	if len(got) != 2 || got[0].Question != "q2" || got[1].Question != "q1" {
		t.Errorf("Recent = %+v", got)
	}
}

func TestRedisLog_RecentAll(t *testing.T) {
	ms := &mockStore{}
	ms.lrangeFn = func(_ context.Context, _ string, start, _ int64) ([][]byte, error) {
		if start != 0 {
			t.Errorf("start = %d, want 0", start)
		}
		return nil, nil
	}
	if _, err := NewRedisLog(ms).Recent(context.Background(), 0); err != nil {
		t.Fatalf("Recent: %v", err)
	}
}

func TestRedisLog_StoreError(t *testing.T) {
	boom := errors.New("down")
	ms := &mockStore{
		rpushFn:  func(context.Context, string, ...[]byte) error { return boom },
		lrangeFn: func(context.Context, string, int64, int64) ([][]byte, error) { return nil, boom },
	}
	l := NewRedisLog(ms)
	if err := l.Append(context.Background(), domain.Exchange{}); !errors.Is(err, boom) {
		t.Errorf("Append err = %v", err)
	}
	if _, err := l.Recent(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("Recent err = %v", err)
	}
}
