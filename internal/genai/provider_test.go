package genai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mathquest/engine/internal/llm"
	"github.com/mathquest/engine/internal/problem"
)

func wordProblemJSON(factor int) json.RawMessage {
	wp := WordProblem{
		Narrative: "A farmer plants 7 rows of trees.",
		Hint:      "That is 7 times the factor.",
		Equation:  "7 × ? = ?",
		Factor:    factor,
	}
	b, _ := json.Marshal(wp)
	return b
}

func TestGenerateComputesAnswerLocally(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: wordProblemJSON(6)})
	p := New(mock, DefaultConfig())

	s, err := p.Generate(context.Background(), problem.GenerateInput{
		LearnerID: "u1", Topic: 7, Difficulty: 2,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if s.Answer != 42 {
		t.Errorf("answer = %d, want 7×6 = 42", s.Answer)
	}
	if s.TemplateID != problem.SourceGenerative {
		t.Errorf("source = %q, want generative marker", s.TemplateID)
	}
	if s.Bindings["a"] != 7 || s.Bindings["b"] != 6 {
		t.Errorf("bindings = %v", s.Bindings)
	}
	if s.LearnerID != "u1" || s.Topic != 7 || s.Difficulty != 2 {
		t.Errorf("session fields mismatch: %+v", s)
	}
	if s.ID == "" {
		t.Error("missing session ID")
	}
}

func TestGenerateRejectsFactorOutOfRange(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: wordProblemJSON(12)})
	p := New(mock, DefaultConfig())

	_, err := p.Generate(context.Background(), problem.GenerateInput{LearnerID: "u1", Topic: 3, Difficulty: 1})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Validator != "factor-range" {
		t.Errorf("err = %v, want factor-range validation error", err)
	}
}

func TestGenerateRejectsEmptyNarrative(t *testing.T) {
	bad, _ := json.Marshal(WordProblem{Hint: "h", Equation: "e", Factor: 3})
	mock := llm.NewMockProvider(llm.MockResponse{Content: bad})
	p := New(mock, DefaultConfig())

	_, err := p.Generate(context.Background(), problem.GenerateInput{LearnerID: "u1", Topic: 3, Difficulty: 1})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Validator != "structural" {
		t.Errorf("err = %v, want structural validation error", err)
	}
}

func TestGeneratePropagatesProviderFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	p := New(mock, DefaultConfig())

	_, err := p.Generate(context.Background(), problem.GenerateInput{LearnerID: "u1", Topic: 3, Difficulty: 1})
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("err = %v, want wrapped ErrProviderUnavailable", err)
	}
}

func TestPromptCarriesRecentMistakes(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: wordProblemJSON(4)})
	p := New(mock, DefaultConfig())

	_, err := p.Generate(context.Background(), problem.GenerateInput{
		LearnerID:      "u1",
		Topic:          4,
		Difficulty:     1,
		RecentMistakes: []string{"answered 20 for 4 × 6, correct was 24"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d", mock.CallCount())
	}
	msg := mock.Calls[0].Messages[0].Content
	if !strings.Contains(msg, "answered 20 for 4 × 6") {
		t.Errorf("prompt missing mistake context:\n%s", msg)
	}
	if !strings.Contains(msg, "Topic: 4") {
		t.Errorf("prompt missing topic:\n%s", msg)
	}
}

func TestFormatMistakesCapsAtLimit(t *testing.T) {
	mistakes := []string{"one", "two", "three", "four", "five", "six", "seven"}
	got := formatMistakes(mistakes, 5)
	if strings.Contains(got, "one") || strings.Contains(got, "two") {
		t.Errorf("oldest mistakes should be dropped:\n%s", got)
	}
	if !strings.Contains(got, "seven") {
		t.Errorf("newest mistake missing:\n%s", got)
	}
}
