package vitals

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is a half-open age interval [Min, Max).
type Range struct {
	Min int
	Max int
}

// Contains reports whether age falls inside the range.
func (r Range) Contains(age int) bool {
	return r.Min <= age && age < r.Max
}

// ageRule recognizes one textual age-range format. Rules are tried in slice order.
type ageRule struct {
	tag     string
	pattern *regexp.Regexp
}

// Order matters: source tables phrase bands ambiguously and earlier rules must win.
var ageRules = []ageRule{
	{"yr-upto", regexp.MustCompile(`(\d+)\s*yr\s*-\s*<\s*(\d+)`)},
	{"yr-paren", regexp.MustCompile(`\((\d+)[–-](\d+)\s*yr\)`)},
	{"year-upto", regexp.MustCompile(`(\d+)\s*year\s*[–-]\s*<\s*(\d+)\s*year`)},
	{"months-upto", regexp.MustCompile(`(\d+)\s*months?\s*[–-]\s*<\s*(\d+)\s*months?`)},
	{"month-span", regexp.MustCompile(`(\d+)\s*[–-]\s*(\d+)\s*month`)},
	{"yr-span", regexp.MustCompile(`(\d+)\s*[–-]\s*(\d+)\s*yr`)},
}

var firstInteger = regexp.MustCompile(`\d+`)

// ParseRange reads an age descriptor such as "1 yr - <2" or "(1–2 yr)".
// It returns the tag of the rule that matched; ok is false when no rule applies.
func ParseRange(ageText string) (r Range, tag string, ok bool) {
	text := strings.ToLower(ageText)
	for _, rule := range ageRules {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[2])
		if errLo != nil || errHi != nil {
			return Range{}, rule.tag, false
		}
		return Range{Min: lo, Max: hi}, rule.tag, true
	}
	return Range{}, "", false
}

// ExtractAge returns the first integer literal in free text.
func ExtractAge(query string) (int, bool) {
	lit := firstInteger.FindString(query)
	if lit == "" {
		return 0, false
	}
	age, err := strconv.Atoi(lit)
	if err != nil {
		return 0, false
	}
	return age, true
}
