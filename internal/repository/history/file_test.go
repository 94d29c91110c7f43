package history

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

func TestFileLog_AppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	l := NewFileLog(path)
	ctx := context.Background()

	for _, q := range []string{"q1", "q2", "q3"} {
		if err := l.Append(ctx, domain.Exchange{Question: q, Answer: "a-" + q}); err != nil {
			t.Fatalf("Append(%s): %v", q, err)
		}
	}

	got, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Question != "q3" || got[1].Question != "q2" {
		t.Errorf("Recent(2) = %+v, want q3 then q2", got)
	}

	all, err := l.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0): %v", err)
	}
	if len(all) != 3 || all[2].Question != "q1" {
		t.Errorf("Recent(0) = %+v", all)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"question\": \"q1\"") {
		t.Errorf("unexpected file layout:\n%s", data)
	}
}

func TestFileLog_MissingFile(t *testing.T) {
	l := NewFileLog(filepath.Join(t.TempDir(), "none.json"))
	got, err := l.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty history, got %+v", got)
	}
}

func TestFileLog_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	l := NewFileLog(path)
	if _, err := l.Recent(context.Background(), 5); err == nil {
		t.Error("expected decode error")
	}
	if err := l.Append(context.Background(), domain.Exchange{Question: "q"}); err != nil {
		t.Fatalf("append over corrupt file: %v", err)
	}
	got, err := l.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent after restart: %v", err)
	}
	if len(got) != 1 || got[0].Question != "q" {
		t.Errorf("history = %+v, want the single new entry", got)
	}
}

func TestFileLog_ConcurrentAppend(t *testing.T) {
	l := NewFileLog(filepath.Join(t.TempDir(), "h.json"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Append(ctx, domain.Exchange{Question: "q", Answer: "a"}); err != nil {
				t.Errorf("Append: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := l.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("expected 20 entries, got %d", len(got))
	}
}
