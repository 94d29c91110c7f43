// Package pdf extracts text lines and tables from PDF reference documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// Extractor reads PDF files with github.com/ledongthuc/pdf.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a PDF extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns every page's lines and detected tables in page order.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.ExtractedPage, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	pages := make([]domain.ExtractedPage, 0, n)
	for i := 1; i <= n; i++ {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		page, err := e.extractPage(p)
		if err != nil {
			e.logger.Warn("Skipping unreadable page", zap.Int("page", i), zap.Error(err))
			continue
		}
		page.Number = i
		pages = append(pages, page)
	}
	return pages, nil
}

func (e *Extractor) extractPage(p pdf.Page) (page domain.ExtractedPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	rows, err := p.GetTextByRow()
	if err != nil {
		return domain.ExtractedPage{}, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) > 0 {
		page.Lines, page.Tables = layoutPage(convertRows(rows))
		return page, nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return domain.ExtractedPage{}, fmt.Errorf("read plain text: %w", err)
	}
	page.Lines = strings.Split(text, "\n")
	return page, nil
}

func convertRows(rows pdf.Rows) []line {
	out := make([]line, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		l := make(line, 0, len(r.Content))
		for _, t := range r.Content {
			if t.S == "" {
				continue
			}
			l = append(l, glyph{X: t.X, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		out = append(out, l)
	}
	return out
}
