package quiz

import (
	"errors"
	"slices"
	"testing"
)

func TestDefaultBank(t *testing.T) {
	bank := DefaultBank()
	if len(bank) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(bank))
	}
	for _, q := range bank {
		if !slices.Contains(q.Options, q.Answer) {
			t.Errorf("%q: answer %q not among options", q.Text, q.Answer)
		}
	}
}

func TestGrade(t *testing.T) {
	s := New(nil)

	res, err := s.Grade([]string{"25-45", "1000 mL", "Distributive shock"})
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Score != 2 || res.Total != 3 {
		t.Errorf("score = %d/%d, want 2/3", res.Score, res.Total)
	}
	if res.Grades[1].OK || res.Grades[1].Correct != "1100 mL" {
		t.Errorf("grade[1] = %+v", res.Grades[1])
	}
}

func TestGrade_CountMismatch(t *testing.T) {
	if _, err := New(nil).Grade([]string{"25-45"}); !errors.Is(err, ErrAnswerCount) {
		t.Errorf("expected ErrAnswerCount, got %v", err)
	}
}

func TestQuestions_ReturnsCopy(t *testing.T) {
	s := New(nil)
	qs := s.Questions()
	qs[0].Answer = "tampered"
	if s.Questions()[0].Answer != "25-45" {
		t.Error("Questions must not expose internal state")
	}
}
