package vitals

import "strings"

type entry struct {
	row    Row
	rng    Range
	parsed bool
}

// Table is an immutable, pre-parsed set of reference rows in source order.
type Table struct {
	entries []entry
}

// NewTable parses every row's age descriptor once. Rows without Age, or whose
// Age matches no known format, are kept but never match.
func NewTable(rows []Row) *Table {
	t := &Table{entries: make([]entry, len(rows))}
	for i, row := range rows {
		t.entries[i].row = row
		if age, ok := row.Age(); ok {
			t.entries[i].rng, _, t.entries[i].parsed = ParseRange(age)
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.entries) }

// Match returns every row whose range contains age, in table order.
func (t *Table) Match(age int) []Row {
	var out []Row
	for _, e := range t.entries {
		if e.parsed && e.rng.Contains(age) {
			out = append(out, e.row)
		}
	}
	return out
}

// Merged aggregates matched rows, first non-empty value per field.
type Merged struct {
	Age             string
	SystolicBP      string
	HeartRate       string
	RespiratoryRate string
}

// Merge folds rows in order; every field independently keeps the first non-empty value.
func Merge(rows []Row) Merged {
	var m Merged
	for _, row := range rows {
		if m.Age == "" {
			m.Age = row[AgeKey]
		}
		if m.SystolicBP == "" {
			m.SystolicBP = row.Value(SystolicBP)
		}
		if m.HeartRate == "" {
			m.HeartRate = row.Value(HeartRate)
		}
		if m.RespiratoryRate == "" {
			m.RespiratoryRate = row.Value(RespiratoryRate)
		}
	}
	return m
}

// Value returns the merged value of a field.
func (m Merged) Value(f Field) string {
	switch f {
	case SystolicBP:
		return m.SystolicBP
	case HeartRate:
		return m.HeartRate
	case RespiratoryRate:
		return m.RespiratoryRate
	}
	return ""
}

// Sentence renders "For a {Age}, the heart rate is X and ...".
func (m Merged) Sentence() string {
	var parts []string
	for _, s := range fieldSpecs {
		if v := m.Value(s.field); v != "" {
			parts = append(parts, s.label+" is "+v)
		}
	}
	return "For a " + m.Age + ", the " + strings.Join(parts, " and ") + "."
}
