// Package quiz serves the self-check question bank.
package quiz

import (
	"errors"
	"fmt"
)

// ErrAnswerCount signals a submission whose length differs from the bank.
var ErrAnswerCount = errors.New("answer count mismatch")

// Question is one multiple-choice item.
type Question struct {
	Text    string
	Options []string
	Answer  string
}

// Grade is the verdict for one submitted answer.
type Grade struct {
	Question string
	Given    string
	Correct  string
	OK       bool
}

// Result is a graded submission.
type Result struct {
	Grades []Grade
	Score  int
	Total  int
}

// DefaultBank returns the built-in questions.
func DefaultBank() []Question {
	return []Question{
		{
			Text:    "What is the normal respiratory rate for a 1-year-old?",
			Options: []string{"10-20", "20-30", "25-45", "60-80"},
			Answer:  "25-45",
		},
		{
			Text:    "What is the recommended fluid requirement for a 12kg child?",
			Options: []string{"1200 mL", "1000 mL", "1100 mL", "1400 mL"},
			Answer:  "1100 mL",
		},
		{
			Text:    "What does a widened pulse pressure indicate in children?",
			Options: []string{"Cardiogenic shock", "Distributive shock", "Hypovolemic shock", "Normal condition"},
			Answer:  "Distributive shock",
		},
	}
}

// Service grades submissions against a fixed bank.
type Service struct {
	bank []Question
}

// New creates a quiz over bank; an empty bank falls back to DefaultBank.
func New(bank []Question) *Service {
	if len(bank) == 0 {
		bank = DefaultBank()
	}
	return &Service{bank: bank}
}

// Questions returns the bank. Callers must not expose Answer to the quiz taker.
func (s *Service) Questions() []Question {
	out := make([]Question, len(s.bank))
	copy(out, s.bank)
	return out
}

// Grade compares answers positionally with the bank.
func (s *Service) Grade(answers []string) (Result, error) {
	if len(answers) != len(s.bank) {
		return Result{}, fmt.Errorf("got %d answers for %d questions: %w", len(answers), len(s.bank), ErrAnswerCount)
	}
	res := Result{Grades: make([]Grade, len(s.bank)), Total: len(s.bank)}
	for i, q := range s.bank {
		ok := answers[i] == q.Answer
		if ok {
			res.Score++
		}
		res.Grades[i] = Grade{Question: q.Text, Given: answers[i], Correct: q.Answer, OK: ok}
	}
	return res, nil
}
