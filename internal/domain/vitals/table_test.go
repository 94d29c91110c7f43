package vitals

import "testing"

func TestTable_MatchBoundaries(t *testing.T) {
	rows := []Row{
		{"Age": "1 yr - <2", "Heart Rate": "100-150"},
		{"Age": "(2-6 yr)", "Heart Rate": "80-140"},
		{"Age": "0-1 month", "Heart Rate": "100-205"},
		{"Age": "6-12 yr", "Heart Rate": "75-118"},
	}
	table := NewTable(rows)

	for _, row := range rows {
		rng, _, ok := ParseRange(row[AgeKey])
		if !ok {
			t.Fatalf("fixture %q must parse", row[AgeKey])
		}
		for a := rng.Min; a < rng.Max; a++ {
			if !containsRow(table.Match(a), row) {
				t.Errorf("age %d should match %q", a, row[AgeKey])
			}
		}
		if containsRow(table.Match(rng.Min-1), row) {
			t.Errorf("age %d should not match %q", rng.Min-1, row[AgeKey])
		}
		if containsRow(table.Match(rng.Max), row) {
			t.Errorf("age %d should not match %q", rng.Max, row[AgeKey])
		}
	}
}

func TestTable_SkipsUnusableRows(t *testing.T) {
	table := NewTable([]Row{
		{"Heart Rate": "100-150"},
		{"Age": "Neonate", "Heart Rate": "100-205"},
	})
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if got := table.Match(0); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestTable_CollectsEveryMatchInOrder(t *testing.T) {
	table := NewTable([]Row{
		{"Age": "1 yr - <2", "Heart Rate": "100-150"},
		{"Age": "Infant"},
		{"Age": "(1-2 yr)", "Systolic BP": "86-106"},
	})
	got := table.Match(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0]["Heart Rate"] != "100-150" || got[1]["Systolic BP"] != "86-106" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestMerge_PartialRows(t *testing.T) {
	m := Merge([]Row{
		{"Age": "1 yr - <2", "Heart Rate (beats/min)": "98-140"},
		{"Age": "(1-2 yr)", "Systolic Blood Pressure (mmHg)": "86-106", "Heart Rate": "80-120"},
	})
	if m.Age != "1 yr - <2" {
		t.Errorf("Age = %q, want first row's", m.Age)
	}
	if m.HeartRate != "98-140" {
		t.Errorf("HeartRate = %q, want first non-empty value", m.HeartRate)
	}
	if m.SystolicBP != "86-106" {
		t.Errorf("SystolicBP = %q, want second row's", m.SystolicBP)
	}
	if m.RespiratoryRate != "" {
		t.Errorf("RespiratoryRate = %q, want empty", m.RespiratoryRate)
	}
}

func TestMerge_PlainKeyPreferred(t *testing.T) {
	m := Merge([]Row{{
		"Age":                            "1 yr - <2",
		"Respiratory Rate":               "22-37",
		"Respiratory Rate (breaths/min)": "25-45",
	}})
	if m.RespiratoryRate != "22-37" {
		t.Errorf("RespiratoryRate = %q, want plain key value", m.RespiratoryRate)
	}
}

func TestMerge_EmptyValueFallsThrough(t *testing.T) {
	m := Merge([]Row{
		{"Age": "", "Heart Rate": ""},
		{"Age": "1 yr - <2", "Heart Rate": "100-150"},
	})
	if m.Age != "1 yr - <2" || m.HeartRate != "100-150" {
		t.Errorf("unexpected merge: %+v", m)
	}
}

func TestMerged_Sentence(t *testing.T) {
	tests := []struct {
		name string
		m    Merged
		want string
	}{
		{
			name: "single field",
			m:    Merged{Age: "1 yr - <2", HeartRate: "100-150"},
			want: "For a 1 yr - <2, the heart rate is 100-150.",
		},
		{
			name: "all fields in fixed order",
			m:    Merged{Age: "(1-2 yr)", RespiratoryRate: "22-37", HeartRate: "98-140", SystolicBP: "86-106"},
			want: "For a (1-2 yr), the systolic BP is 86-106 and heart rate is 98-140 and respiratory rate is 22-37.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Sentence(); got != tt.want {
				t.Errorf("Sentence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasAgeHeader(t *testing.T) {
	if !HasAgeHeader([]string{"AGE", "Heart Rate"}) {
		t.Error("expected uppercase AGE to qualify")
	}
	if !HasAgeHeader([]string{"Average weight"}) {
		t.Error("substring check should accept 'Average'")
	}
	if HasAgeHeader([]string{"Drug", "Dose"}) {
		t.Error("unexpected match")
	}
}

func containsRow(rows []Row, want Row) bool {
	for _, r := range rows {
		if r[AgeKey] == want[AgeKey] {
			return true
		}
	}
	return false
}
