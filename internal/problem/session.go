package problem

import "time"

// SourceGenerative marks sessions produced by the generative backend
// rather than a template.
const SourceGenerative = "generative"

// Topic bounds for multiplication practice. A topic is the factor the
// learner is drilling (e.g. topic 4 is the four times table).
const (
	MinTopic = 2
	MaxTopic = 9
)

// Difficulty tiers.
const (
	DifficultyEasy   = 1
	DifficultyMedium = 2
	DifficultyHard   = 3
)

// Session is one concrete, answerable problem instance handed to a learner.
// It is created by the orchestrator, mutated only to flip Completed, and
// destroyed by cache eviction or durable-store expiry.
//
// Invariant: Answer == topic-anchor binding × factor binding, and the
// topic-anchor binding always equals Topic.
type Session struct {
	ID         string
	LearnerID  string
	TemplateID string // source template, or SourceGenerative

	Narrative string
	Hint      string
	Equation  string

	Answer     int
	Topic      int
	Difficulty int

	// Bindings holds the concrete value drawn for each template variable.
	Bindings map[string]int

	// VisualMetadata is an optional nested structure the UI layer renders
	// (object layouts, emoji hints). Placeholder-substituted like the text
	// fields.
	VisualMetadata map[string]any

	CreatedAt time.Time
	ExpiresAt time.Time
	Completed bool
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Clone returns a deep copy. The cache hands out clones so callers can't
// mutate cached state behind the guard.
func (s *Session) Clone() *Session {
	c := *s
	if s.Bindings != nil {
		c.Bindings = make(map[string]int, len(s.Bindings))
		for k, v := range s.Bindings {
			c.Bindings[k] = v
		}
	}
	if s.VisualMetadata != nil {
		c.VisualMetadata = cloneValue(s.VisualMetadata).(map[string]any)
	}
	return &c
}

// cloneValue deep-copies the JSON-shaped values visual metadata is made of.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// Subject is the content subject a problem is themed around (apples,
// marbles, stickers). Authored by the out-of-scope content catalog; the
// engine only needs the display name for placeholder substitution.
type Subject struct {
	ID          string
	DisplayName string
}
