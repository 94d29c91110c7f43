package pdf

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// glyph is a positioned run of text on one baseline.
type glyph struct {
	X, W     float64
	FontSize float64
	S        string
}

type line []glyph

// Gap thresholds relative to font size.
const (
	defaultFontSize = 10
	wordGapRatio    = 0.15
	cellGapRatio    = 1.5
)

func fontSize(g glyph) float64 {
	if g.FontSize <= 0 {
		return defaultFontSize
	}
	return g.FontSize
}

// cells splits a line into cell texts wherever the horizontal gap exceeds cellGapRatio.
func (l line) cells() []string {
	if len(l) == 0 {
		return nil
	}
	sorted := slices.Clone(l)
	slices.SortStableFunc(sorted, func(a, b glyph) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	var (
		out []string
		cur strings.Builder
	)
	cur.WriteString(sorted[0].S)
	for i := 1; i < len(sorted); i++ {
		prev, g := sorted[i-1], sorted[i]
		gap := g.X - (prev.X + prev.W)
		fs := fontSize(prev)
		switch {
		case gap > cellGapRatio*fs:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		case gap > wordGapRatio*fs && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " "):
			cur.WriteByte(' ')
		}
		cur.WriteString(g.S)
	}
	return append(out, strings.TrimSpace(cur.String()))
}

// text joins all cells of a line with single spaces.
func (l line) text() string {
	return strings.Join(l.cells(), " ")
}

// layoutPage converts baseline rows, top to bottom, into text lines and tables.
// A table is a run of at least two consecutive lines that each split into two or more cells.
func layoutPage(lines []line) ([]string, []domain.ExtractedTable) {
	var (
		texts  []string
		tables []domain.ExtractedTable
		run    domain.ExtractedTable
	)
	flush := func() {
		if len(run) >= 2 {
			tables = append(tables, run)
		}
		run = nil
	}

	for _, l := range lines {
		cells := l.cells()
		if len(cells) == 0 {
			continue
		}
		texts = append(texts, strings.Join(cells, " "))
		if len(cells) >= 2 {
			run = append(run, cells)
			continue
		}
		flush()
	}
	flush()

	return texts, tables
}
