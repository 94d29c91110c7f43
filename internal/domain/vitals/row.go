// Package vitals models age-banded vital-sign reference rows extracted from tables.
package vitals

import "strings"

// AgeKey is the field every usable row carries.
const AgeKey = "Age"

// Row is one record of a parsed reference table, keyed by header text.
type Row map[string]string

// Age returns the row's age descriptor.
func (r Row) Age() (string, bool) {
	v, ok := r[AgeKey]
	return v, ok
}

// Field identifies a vital sign reported by the matcher.
type Field int

// Reported fields, in output order.
const (
	SystolicBP Field = iota
	HeartRate
	RespiratoryRate
)

type fieldSpec struct {
	field Field
	label string
	keys  []string // plain spelling first
}

var fieldSpecs = []fieldSpec{
	{SystolicBP, "systolic BP", []string{"Systolic BP", "Systolic Blood Pressure (mmHg)"}},
	{HeartRate, "heart rate", []string{"Heart Rate", "Heart Rate (beats/min)"}},
	{RespiratoryRate, "respiratory rate", []string{"Respiratory Rate", "Respiratory Rate (breaths/min)"}},
}

// Label returns the lowercase phrase used in answers.
func (f Field) Label() string {
	for _, s := range fieldSpecs {
		if s.field == f {
			return s.label
		}
	}
	return ""
}

// Value returns the first non-empty value stored under one of the field's key spellings.
func (r Row) Value(f Field) string {
	for _, s := range fieldSpecs {
		if s.field != f {
			continue
		}
		for _, k := range s.keys {
			if v := r[k]; v != "" {
				return v
			}
		}
	}
	return ""
}

// HasAgeHeader reports whether any header mentions age, case-insensitively.
// The check runs over the concatenated header set, so "Average" also qualifies.
func HasAgeHeader(headers []string) bool {
	return strings.Contains(strings.ToLower(strings.Join(headers, "\x00")), "age")
}
