package template

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/mathquest/engine/internal/problem"
)

// mockHistory implements problem.AttemptHistory for engine tests.
type mockHistory struct {
	used    map[string][]string // learnerID -> template IDs
	correct map[string]int
	err     error
}

func (m *mockHistory) CorrectCount(_ context.Context, learnerID string) (int, error) {
	return m.correct[learnerID], m.err
}

func (m *mockHistory) RecentTemplateIDs(_ context.Context, learnerID string, _ int, _ time.Duration) ([]string, error) {
	return m.used[learnerID], m.err
}

func (m *mockHistory) RecentMistakes(_ context.Context, _ string, _ int, _ int) ([]string, error) {
	return nil, m.err
}

func fixtureTemplate(id string, quality float64) Template {
	return Template{
		ID:        id,
		Category:  "grouping",
		Narrative: "There are {b} bags of {a} {subject}. How many {subject}?",
		Hint:      "Think of it as {a} × {b}.",
		Equation:  "{a} × {b} = ?",
		Variables: []VariableSpec{
			{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor},
			{Name: "b", Min: 2, Max: 6, Role: RoleFactor},
		},
		Topics:     []int{2, 3, 4, 5, 6, 7, 8, 9},
		Difficulty: 1,
		Quality:    quality,
		Active:     true,
	}
}

func TestListCandidatesQualityDescending(t *testing.T) {
	catalog := NewStaticCatalog([]Template{
		fixtureTemplate("low", 0.5),
		fixtureTemplate("high", 0.9),
		fixtureTemplate("mid", 0.7),
	})
	e := NewEngine(catalog, nil)

	got, err := e.ListCandidates(context.Background(), 3, 1, "u1")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	want := []string{"high", "mid", "low"}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("candidate[%d] = %s, want %s", i, got[i].ID, w)
		}
	}
}

func TestListCandidatesExcludesRecentlyUsed(t *testing.T) {
	catalog := NewStaticCatalog([]Template{
		fixtureTemplate("fresh", 0.6),
		fixtureTemplate("used", 0.9),
	})
	history := &mockHistory{used: map[string][]string{"u1": {"used"}}}
	e := NewEngine(catalog, history)

	got, err := e.ListCandidates(context.Background(), 3, 1, "u1")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("candidates = %v, want only \"fresh\"", got)
	}
}

func TestListCandidatesEmptyIsNotCompensated(t *testing.T) {
	catalog := NewStaticCatalog([]Template{fixtureTemplate("t1", 0.9)})
	e := NewEngine(catalog, nil)

	// No template serves difficulty 3; the engine must not fall back to
	// another tier.
	got, err := e.ListCandidates(context.Background(), 3, 3, "u1")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d candidates for unserved difficulty, want 0", len(got))
	}
}

func TestRenderBindsAnchorToTopic(t *testing.T) {
	e := NewEngine(NewStaticCatalog(nil), nil)
	tpl := fixtureTemplate("t1", 0.9)

	for topic := 2; topic <= 9; topic++ {
		s, err := e.Render(tpl, problem.Subject{DisplayName: "apples"}, topic, "u1")
		if err != nil {
			t.Fatalf("Render topic %d: %v", topic, err)
		}
		if s.Bindings["a"] != topic {
			t.Errorf("anchor binding = %d, want topic %d", s.Bindings["a"], topic)
		}
		if s.Topic != topic {
			t.Errorf("session topic = %d, want %d", s.Topic, topic)
		}
	}
}

func TestRenderAnswerIsAnchorTimesFactor(t *testing.T) {
	e := NewEngine(NewStaticCatalog(nil), nil)
	tpl := fixtureTemplate("t1", 0.9)
	// Add an auxiliary variable; it must not disturb the answer.
	tpl.Variables = append(tpl.Variables, VariableSpec{Name: "c", Min: 1, Max: 99, Role: RoleAux})

	for i := 0; i < 50; i++ {
		s, err := e.Render(tpl, problem.Subject{DisplayName: "marbles"}, 7, "u1")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		b := s.Bindings["b"]
		if b < 2 || b > 6 {
			t.Fatalf("factor %d outside declared range [2,6]", b)
		}
		if s.Answer != 7*b {
			t.Errorf("answer = %d, want 7×%d = %d", s.Answer, b, 7*b)
		}
	}
}

func TestRenderDeterministicWithSeededRand(t *testing.T) {
	tpl := fixtureTemplate("t1", 0.9)
	subject := problem.Subject{DisplayName: "stickers"}

	render := func() *problem.Session {
		r := rand.New(rand.NewPCG(42, 0))
		e := NewEngine(NewStaticCatalog(nil), nil, WithRand(r))
		s, err := e.Render(tpl, subject, 4, "u1")
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		return s
	}

	first, second := render(), render()
	if first.Bindings["b"] != second.Bindings["b"] || first.Answer != second.Answer {
		t.Errorf("seeded renders diverged: %v vs %v", first.Bindings, second.Bindings)
	}
	if first.Narrative != second.Narrative {
		t.Error("seeded renders produced different narratives")
	}
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	e := NewEngine(NewStaticCatalog(nil), nil)
	tpl := fixtureTemplate("t1", 0.9)
	tpl.VisualMetadata = map[string]any{
		"layout": "groups",
		"groups": map[string]any{"count": "{b}", "item": "{subject}"},
		"labels": []any{"{a} each", 3},
	}

	s, err := e.Render(tpl, problem.Subject{DisplayName: "seashells"}, 4, "u1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, text := range []string{s.Narrative, s.Hint, s.Equation} {
		if strings.ContainsRune(text, '{') {
			t.Errorf("unsubstituted placeholder in %q", text)
		}
	}
	if !strings.Contains(s.Narrative, "seashells") {
		t.Errorf("subject name missing from narrative %q", s.Narrative)
	}

	groups := s.VisualMetadata["groups"].(map[string]any)
	if groups["item"] != "seashells" {
		t.Errorf("visual metadata item = %v, want seashells", groups["item"])
	}
	wantCount := fmt.Sprintf("%d", s.Bindings["b"])
	if groups["count"] != wantCount {
		t.Errorf("visual metadata count = %v, want %s", groups["count"], wantCount)
	}
	labels := s.VisualMetadata["labels"].([]any)
	if labels[0] != "4 each" {
		t.Errorf("labels[0] = %v, want \"4 each\"", labels[0])
	}
	if labels[1] != 3 {
		t.Errorf("non-string leaf changed: %v", labels[1])
	}
}

func TestRenderEquationAndHintReferenceFactor(t *testing.T) {
	e := NewEngine(NewStaticCatalog(nil), nil)
	tpl := fixtureTemplate("t1", 0.9)

	s, err := e.Render(tpl, problem.Subject{DisplayName: "apples"}, 4, "u1")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	pair := fmt.Sprintf("4 × %d", s.Bindings["b"])
	if !strings.Contains(s.Equation, pair) {
		t.Errorf("equation %q does not reference %q", s.Equation, pair)
	}
	if !strings.Contains(s.Hint, pair) {
		t.Errorf("hint %q does not reference %q", s.Hint, pair)
	}
}

func TestRenderRejectsMissingRoles(t *testing.T) {
	e := NewEngine(NewStaticCatalog(nil), nil)
	tpl := fixtureTemplate("t1", 0.9)
	tpl.Variables = []VariableSpec{{Name: "a", Min: 2, Max: 9, Role: RoleTopicAnchor}}

	if _, err := e.Render(tpl, problem.Subject{}, 4, "u1"); err == nil {
		t.Error("Render accepted a template with no factor variable")
	}
}

func TestBuiltinTemplatesAreWellFormed(t *testing.T) {
	e := NewEngine(NewStaticCatalog(BuiltinTemplates()), nil)
	for _, tpl := range BuiltinTemplates() {
		s, err := e.Render(tpl, problem.Subject{DisplayName: "cookies"}, 6, "u1")
		if err != nil {
			t.Errorf("template %s: %v", tpl.ID, err)
			continue
		}
		if s.Answer != 6*s.Bindings["b"] {
			t.Errorf("template %s: answer %d != 6×%d", tpl.ID, s.Answer, s.Bindings["b"])
		}
	}
}

func TestProviderReturnsErrNoContent(t *testing.T) {
	p := NewProvider(NewEngine(NewStaticCatalog(nil), nil), NewStaticSubjects())
	_, err := p.Generate(context.Background(), problem.GenerateInput{LearnerID: "u1", Topic: 3, Difficulty: 1})
	if !errors.Is(err, problem.ErrNoContent) {
		t.Errorf("err = %v, want wrapped problem.ErrNoContent", err)
	}
}
