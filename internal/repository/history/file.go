// Package history persists asked questions and their answers.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// errCorrupt marks a history file that is not a JSON array of exchanges.
var errCorrupt = errors.New("corrupt history file")

// FileLog keeps the whole history as a JSON array in a single file.
type FileLog struct {
	mu   sync.Mutex
	path string
}

// NewFileLog creates a file-backed log. The file is created on first append.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Append adds an exchange to the end of the log. A corrupt file is started over.
func (l *FileLog) Append(_ context.Context, e domain.Exchange) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if errors.Is(err, errCorrupt) {
		entries, err = nil, nil
	}
	if err != nil {
		return err
	}
	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges, newest first. limit <= 0 returns everything.
func (l *FileLog) Recent(_ context.Context, limit int) ([]domain.Exchange, error) {
	l.mu.Lock()
	entries, err := l.read()
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	slices.Reverse(entries)
	return entries, nil
}

func (l *FileLog) read() ([]domain.Exchange, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []domain.Exchange
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errCorrupt, l.path, err)
	}
	return entries, nil
}
