package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/domain/vitals"
)

// DefaultMinLineLen is the trimmed length, in characters, a line must exceed to become a chunk.
const DefaultMinLineLen = 30

// SelectChunks keeps every trimmed line longer than minLen, page by page.
func SelectChunks(pages []domain.ExtractedPage, minLen int) []string {
	var out []string
	for _, p := range pages {
		for _, line := range p.Lines {
			for _, part := range strings.Split(line, "\n") {
				if t := strings.TrimSpace(part); utf8.RuneCountInString(t) > minLen {
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// SelectRows turns table rows into header-keyed records. Rows whose cell count
// differs from the header are dropped, as are records without an age column.
func SelectRows(pages []domain.ExtractedPage) []vitals.Row {
	var out []vitals.Row
	for _, p := range pages {
		for _, t := range p.Tables {
			out = append(out, tableRows(t)...)
		}
	}
	return out
}

func tableRows(t domain.ExtractedTable) []vitals.Row {
	if len(t) == 0 {
		return nil
	}
	header := t[0]
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(h)
	}

	var out []vitals.Row
	for _, cells := range t[1:] {
		if len(cells) != len(header) {
			continue
		}
		row := make(vitals.Row, len(cells))
		for i, c := range cells {
			row[keys[i]] = strings.TrimSpace(c)
		}
		if vitals.HasAgeHeader(rowKeys(row)) {
			out = append(out, row)
		}
	}
	return out
}

func rowKeys(r vitals.Row) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
