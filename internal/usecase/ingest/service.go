// Package ingest turns a reference document into the artifacts the online service reads.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// Report summarizes one ingestion run.
type Report struct {
	Pages    int
	Chunks   int
	Rows     int
	Duration time.Duration
}

// Service runs the offline pipeline: extract, select, persist, index.
type Service struct {
	extractor  Extractor
	builder    IndexBuilder
	sink       Sink
	snapshot   Snapshotter
	minLineLen int
	logger     *zap.Logger
}

// New creates an ingestion service. snapshot is nil when vectors are stored server-side.
func New(
	extractor Extractor, builder IndexBuilder, sink Sink, snapshot Snapshotter,
	minLineLen int, logger *zap.Logger,
) *Service {
	if minLineLen <= 0 {
		minLineLen = DefaultMinLineLen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor:  extractor,
		builder:    builder,
		sink:       sink,
		snapshot:   snapshot,
		minLineLen: minLineLen,
		logger:     logger,
	}
}

// Run ingests the document at path.
func (s *Service) Run(ctx context.Context, path string) (Report, error) {
	start := time.Now()

	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return Report{}, fmt.Errorf("extract %s: %w", path, err)
	}

	chunks := domain.NewChunks(SelectChunks(pages, s.minLineLen))
	rows := SelectRows(pages)
	s.logger.Info("Extracted chunks and structured rows",
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
		zap.Int("rows", len(rows)),
	)

	if err = s.sink.WriteChunks(chunks); err != nil {
		return Report{}, fmt.Errorf("save chunks: %w", err)
	}
	if err = s.sink.WriteRows(rows); err != nil {
		return Report{}, fmt.Errorf("save rows: %w", err)
	}

	if err = s.builder.Build(ctx, chunks); err != nil {
		return Report{}, fmt.Errorf("build index: %w", err)
	}
	if s.snapshot != nil {
		if err = s.sink.WriteIndex(s.snapshot.Index()); err != nil {
			return Report{}, fmt.Errorf("save index: %w", err)
		}
	}

	return Report{
		Pages:    len(pages),
		Chunks:   len(chunks),
		Rows:     len(rows),
		Duration: time.Since(start),
	}, nil
}
