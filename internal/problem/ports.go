package problem

import (
	"context"
	"errors"
	"time"
)

// ErrNoContent is returned by a ContentProvider that cannot produce a
// session for the requested topic and difficulty (e.g. no templates match).
var ErrNoContent = errors.New("no content available")

// GenerateInput carries everything a ContentProvider needs for one request.
type GenerateInput struct {
	LearnerID  string
	Topic      int
	Difficulty int

	// RecentMistakes describes the learner's recent wrong attempts on this
	// topic. Only the generative backend consumes it.
	RecentMistakes []string
}

// ContentProvider produces a fully rendered session for a topic and
// difficulty. Both the template pathway and the generative backend
// implement this contract.
type ContentProvider interface {
	Generate(ctx context.Context, input GenerateInput) (*Session, error)
}

// DurableStore is the keyed persistence collaborator. It exists for crash
// recovery only; the session cache is the source of truth while hot.
type DurableStore interface {
	// Upsert writes or replaces the session keyed by its ID.
	Upsert(ctx context.Context, s *Session) error

	// Get returns the session owned by learnerID with the given ID, or
	// (nil, nil) when no such row exists.
	Get(ctx context.Context, learnerID, sessionID string) (*Session, error)

	// QueryActive returns incomplete, unexpired sessions for a learner,
	// optionally filtered by topic (0 means any).
	QueryActive(ctx context.Context, learnerID string, topic int) ([]*Session, error)

	// MarkComplete flips the completion flag on the stored row.
	MarkComplete(ctx context.Context, sessionID string) error
}

// Attempt is one submission outcome, recorded append-only.
type Attempt struct {
	LearnerID  string
	SessionID  string
	TemplateID string
	Topic      int
	Difficulty int
	Equation   string
	Answer     int
	Expected   int
	Correct    bool
	ElapsedSec int
	HintsUsed  int
	Reward     int
}

// AttemptLog is the append-only, fire-and-forget attempt sink.
type AttemptLog interface {
	Record(ctx context.Context, a Attempt) error
}

// AttemptHistory exposes the aggregate reads the selector and template
// engine need. Implementations back onto the same attempt rows the log
// writes.
type AttemptHistory interface {
	// CorrectCount returns the learner's lifetime correct-answer count.
	CorrectCount(ctx context.Context, learnerID string) (int, error)

	// RecentTemplateIDs returns the template IDs the learner used against
	// the topic within the trailing window. Rendering a session from a
	// template counts as use; an answer need not have been submitted.
	RecentTemplateIDs(ctx context.Context, learnerID string, topic int, window time.Duration) ([]string, error)

	// RecentMistakes returns short descriptions of the learner's most
	// recent wrong attempts on the topic, newest last, capped at limit.
	RecentMistakes(ctx context.Context, learnerID string, topic int, limit int) ([]string, error)
}

// SubjectSource picks a content subject to theme a problem around.
type SubjectSource interface {
	PickSubject(ctx context.Context, topic int) (Subject, error)
}
