// Package artifacts reads and writes the ingestion outputs the online service is built from.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/domain/vitals"
	"github.com/kailas-cloud/nurseally/internal/index/flat"
)

// File names inside an artifact directory.
const (
	ChunksFile = "chunks.txt"
	RowsFile   = "structured_data.json"
	IndexFile  = "index.flat"

	chunkSeparator = "\n\n"
)

// Bundle is the immutable set of artifacts shared by every request.
type Bundle struct {
	Chunks []domain.Chunk
	Rows   []vitals.Row
	Table  *vitals.Table
	// Index is nil when vectors live in a server-side index.
	Index *flat.Index
}

// LoadOptions controls which artifacts Load requires.
type LoadOptions struct {
	// WithIndex loads index.flat and checks it against the chunk list.
	WithIndex bool
	// Dimensions, when positive, must equal the index vector length.
	Dimensions int
}

// Dir is an artifact directory.
type Dir struct {
	path string
}

// NewDir returns a handle to the directory at path.
func NewDir(path string) Dir { return Dir{path: path} }

// Path returns the directory path.
func (d Dir) Path() string { return d.path }

// Load reads every artifact and validates that chunks and vectors agree.
func (d Dir) Load(opts LoadOptions) (*Bundle, error) {
	chunks, err := d.ReadChunks()
	if err != nil {
		return nil, err
	}
	rows, err := d.ReadRows()
	if err != nil {
		return nil, err
	}

	b := &Bundle{Chunks: chunks, Rows: rows, Table: vitals.NewTable(rows)}
	if !opts.WithIndex {
		return b, nil
	}

	idx, err := flat.Load(d.file(IndexFile))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", IndexFile, err)
	}
	if idx.Len() != len(chunks) {
		return nil, domain.NewArtifactMismatch(len(chunks), idx.Len())
	}
	if opts.Dimensions > 0 && idx.Len() > 0 && idx.Dim() != opts.Dimensions {
		return nil, fmt.Errorf("%s has %d dimensions, want %d: %w",
			IndexFile, idx.Dim(), opts.Dimensions, domain.ErrVectorDimMismatch)
	}
	b.Index = idx
	return b, nil
}

// ReadChunks reads chunks.txt. Pieces are trimmed and blank ones skipped.
// A missing file yields no chunks.
func (d Dir) ReadChunks() ([]domain.Chunk, error) {
	data, err := os.ReadFile(d.file(ChunksFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ChunksFile, err)
	}
	var texts []string
	for _, part := range strings.Split(string(data), chunkSeparator) {
		if t := strings.TrimSpace(part); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return domain.NewChunks(texts), nil
}

// ReadRows reads structured_data.json. A missing file yields no rows.
func (d Dir) ReadRows() ([]vitals.Row, error) {
	data, err := os.ReadFile(d.file(RowsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", RowsFile, err)
	}
	var rows []vitals.Row
	if err = json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", RowsFile, domain.ErrInvalidArtifact, err)
	}
	return rows, nil
}

// WriteChunks writes chunk texts separated by a blank line.
func (d Dir) WriteChunks(chunks []domain.Chunk) error {
	data := strings.Join(domain.Texts(chunks), chunkSeparator)
	return d.write(ChunksFile, []byte(data))
}

// WriteRows writes rows as an indented JSON array.
func (d Dir) WriteRows(rows []vitals.Row) error {
	if rows == nil {
		rows = []vitals.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", RowsFile, err)
	}
	return d.write(RowsFile, data)
}

// WriteIndex writes index.flat.
func (d Dir) WriteIndex(idx *flat.Index) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := idx.Save(d.file(IndexFile)); err != nil {
		return fmt.Errorf("write %s: %w", IndexFile, err)
	}
	return nil
}

func (d Dir) write(name string, data []byte) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(d.file(name), data, 0o644); err != nil { //nolint:gosec // artifacts are not secret
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (d Dir) file(name string) string { return filepath.Join(d.path, name) }
