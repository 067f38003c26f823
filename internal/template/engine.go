package template

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mathquest/engine/internal/problem"
)

// UsageWindow is the trailing window within which a learner does not see
// the same template twice for one topic.
const UsageWindow = 7 * 24 * time.Hour

// Engine selects, ranks, and renders templates into concrete sessions.
type Engine struct {
	catalog Catalog
	history problem.AttemptHistory

	// intn draws a uniform integer in [0, n). Injectable for seeded tests;
	// rendering is deterministic given a fixed draw.
	intn func(n int) int
	now  func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes the engine draw variables from the given source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.intn = r.IntN }
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a template engine over the catalog. History feeds the
// recently-used exclusion; a nil history disables it.
func NewEngine(catalog Catalog, history problem.AttemptHistory, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		history: history,
		intn:    rand.IntN,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ListCandidates returns quality-descending templates for the topic and
// difficulty, excluding those the learner answered against the topic within
// the trailing usage window. An empty result is returned as-is; the engine
// never substitutes a different topic or difficulty to compensate.
func (e *Engine) ListCandidates(ctx context.Context, topic, difficulty int, learnerID string) ([]Template, error) {
	candidates, err := e.catalog.ActiveTemplates(ctx, topic, difficulty)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}

	if e.history != nil && learnerID != "" {
		used, err := e.history.RecentTemplateIDs(ctx, learnerID, topic, UsageWindow)
		if err != nil {
			return nil, fmt.Errorf("recent template usage: %w", err)
		}
		if len(used) > 0 {
			usedSet := make(map[string]struct{}, len(used))
			for _, id := range used {
				usedSet[id] = struct{}{}
			}
			kept := candidates[:0]
			for _, t := range candidates {
				if _, ok := usedSet[t.ID]; !ok {
					kept = append(kept, t)
				}
			}
			candidates = kept
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Quality > candidates[j].Quality
	})
	return candidates, nil
}

// Render binds the template's variables and substitutes every placeholder,
// producing a session owned by the learner.
//
// The topic-anchor variable is bound to the requested topic; every other
// variable is drawn uniformly from its declared range. The answer is always
// anchor × factor, no matter how many auxiliary variables exist.
func (e *Engine) Render(tpl Template, subject problem.Subject, topic int, learnerID string) (*problem.Session, error) {
	anchor, factor, err := tpl.roles()
	if err != nil {
		return nil, err
	}

	bindings := make(map[string]int, len(tpl.Variables))
	for _, v := range tpl.Variables {
		if v.Name == anchor.Name {
			bindings[v.Name] = topic
			continue
		}
		if v.Max < v.Min {
			return nil, fmt.Errorf("template %s: variable %s has empty range [%d,%d]", tpl.ID, v.Name, v.Min, v.Max)
		}
		bindings[v.Name] = v.Min + e.intn(v.Max-v.Min+1)
	}

	values := make(map[string]string, len(bindings)+1)
	for name, val := range bindings {
		values[name] = strconv.Itoa(val)
	}
	values["subject"] = subject.DisplayName

	return &problem.Session{
		ID:             uuid.New().String(),
		LearnerID:      learnerID,
		TemplateID:     tpl.ID,
		Narrative:      substitute(tpl.Narrative, values),
		Hint:           substitute(tpl.Hint, values),
		Equation:       substitute(tpl.Equation, values),
		Answer:         topic * bindings[factor.Name],
		Topic:          topic,
		Difficulty:     tpl.Difficulty,
		Bindings:       bindings,
		VisualMetadata: substituteTree(tpl.VisualMetadata, values),
		CreatedAt:      e.now(),
	}, nil
}

// substitute replaces every {name} placeholder with its bound value.
func substitute(text string, values map[string]string) string {
	if text == "" || !strings.ContainsRune(text, '{') {
		return text
	}
	pairs := make([]string, 0, len(values)*2)
	for name, val := range values {
		pairs = append(pairs, "{"+name+"}", val)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// substituteTree walks nested visual metadata, substituting placeholders in
// every string leaf.
func substituteTree(meta map[string]any, values map[string]string) map[string]any {
	if meta == nil {
		return nil
	}
	return substituteValue(meta, values).(map[string]any)
}

func substituteValue(v any, values map[string]string) any {
	switch t := v.(type) {
	case string:
		return substitute(t, values)
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = substituteValue(e, values)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = substituteValue(e, values)
		}
		return s
	default:
		return v
	}
}
