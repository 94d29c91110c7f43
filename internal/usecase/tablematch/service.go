// Package tablematch answers age-specific vital-sign questions from structured reference rows.
package tablematch

import (
	"strings"

	"github.com/kailas-cloud/nurseally/internal/domain/vitals"
)

// Lookup is the outcome of a structured match.
type Lookup struct {
	Age     int
	Rows    []vitals.Row
	Merged  vitals.Merged
	Matched bool
}

// Service matches the age mentioned in a question against a reference table.
type Service struct {
	table *vitals.Table
}

// New creates a matcher over a pre-parsed table. A nil table never matches.
func New(table *vitals.Table) *Service {
	if table == nil {
		table = vitals.NewTable(nil)
	}
	return &Service{table: table}
}

// Lookup extracts the first integer of the query and collects every row whose range contains it.
func (s *Service) Lookup(query string) Lookup {
	age, ok := vitals.ExtractAge(strings.ToLower(query))
	if !ok {
		return Lookup{}
	}
	rows := s.table.Match(age)
	if len(rows) == 0 {
		return Lookup{Age: age}
	}
	return Lookup{
		Age:     age,
		Rows:    rows,
		Merged:  vitals.Merge(rows),
		Matched: true,
	}
}

// Answer returns the structured sentence, or ok=false when nothing matched.
func (s *Service) Answer(query string) (string, bool) {
	l := s.Lookup(query)
	if !l.Matched {
		return "", false
	}
	return l.Merged.Sentence(), true
}
