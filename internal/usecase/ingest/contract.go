package ingest

import (
	"context"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/domain/vitals"
	"github.com/kailas-cloud/nurseally/internal/index/flat"
)

// Extractor reads the pages of a source document.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]domain.ExtractedPage, error)
}

// IndexBuilder embeds chunks into the vector index.
type IndexBuilder interface {
	Build(ctx context.Context, chunks []domain.Chunk) error
}

// Sink persists ingestion outputs.
type Sink interface {
	WriteChunks(chunks []domain.Chunk) error
	WriteRows(rows []vitals.Row) error
	WriteIndex(idx *flat.Index) error
}

// Snapshotter exposes a built in-process index for persistence.
type Snapshotter interface {
	Index() *flat.Index
}
