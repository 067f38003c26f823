// Package engine is the session orchestrator: the public surface composing
// the strategy selector, content providers, session cache, and durable
// store into generate and submit operations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/mathquest/engine/internal/cache"
	"github.com/mathquest/engine/internal/problem"
	"github.com/mathquest/engine/internal/strategy"
)

// ErrContentUnavailable means both the chosen pathway and the generative
// retry failed to produce a session.
var ErrContentUnavailable = errors.New("content unavailable")

// Config tunes the orchestrator.
type Config struct {
	// BaseRewards maps difficulty to the base reward for a correct answer.
	BaseRewards map[int]int

	// ColdReadTimeout bounds the durable-store read on a cache miss so a
	// slow store never stalls submission.
	ColdReadTimeout time.Duration

	// AsyncTimeout bounds background durable writes and attempt logging.
	AsyncTimeout time.Duration

	// MistakeContextLimit caps the recent-mistake descriptions passed to
	// the generative pathway.
	MistakeContextLimit int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		BaseRewards: map[int]int{
			problem.DifficultyEasy:   10,
			problem.DifficultyMedium: 20,
			problem.DifficultyHard:   30,
		},
		ColdReadTimeout:     2 * time.Second,
		AsyncTimeout:        5 * time.Second,
		MistakeContextLimit: 5,
	}
}

// ProblemView is the learner-visible slice of a session. The canonical
// answer is deliberately absent.
type ProblemView struct {
	SessionID      string         `json:"session_id"`
	Narrative      string         `json:"narrative"`
	Hint           string         `json:"hint"`
	Equation       string         `json:"equation"`
	Topic          int            `json:"topic"`
	Difficulty     int            `json:"difficulty"`
	VisualMetadata map[string]any `json:"visual_metadata,omitempty"`
}

// SubmissionResult is the outcome of one answer submission. NotFound is a
// typed result, not an error: an expired or evicted session is an expected
// condition the caller resolves by regenerating.
type SubmissionResult struct {
	Correct         bool   `json:"correct"`
	CanonicalAnswer int    `json:"canonical_answer"`
	Reward          int    `json:"reward"`
	Feedback        string `json:"feedback"`
	NotFound        bool   `json:"not_found,omitempty"`
}

// Stats is the operator-facing cache snapshot.
type Stats struct {
	TotalCached         int   `json:"total_cached"`
	ActiveCached        int   `json:"active_cached"`
	ExpiredPendingSweep int   `json:"expired_pending_sweep"`
	UniqueLearners      int   `json:"unique_learners"`
	Hits                int64 `json:"hits"`
	Misses              int64 `json:"misses"`
	Evictions           int64 `json:"evictions"`
}

// Engine orchestrates problem sessions end to end.
type Engine struct {
	cfg Config

	cache      *cache.Cache
	durable    problem.DurableStore
	attempts   problem.AttemptLog
	history    problem.AttemptHistory
	selector   *strategy.Selector
	templates  problem.ContentProvider
	generative problem.ContentProvider

	roll  func() float64 // hybrid pathway split
	now   func() time.Time
	spawn func(task func()) // background task runner
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRoll fixes the hybrid split roll for tests.
func WithRoll(roll func() float64) Option {
	return func(e *Engine) { e.roll = roll }
}

// WithNow fixes the clock for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSynchronousTasks runs background writes inline, for tests.
func WithSynchronousTasks() Option {
	return func(e *Engine) { e.spawn = func(task func()) { task() } }
}

// New creates an Engine. The durable store, attempt log, and history may be
// nil; the engine then runs cache-only with no persistence.
func New(cfg Config, c *cache.Cache, durable problem.DurableStore, attempts problem.AttemptLog,
	history problem.AttemptHistory, selector *strategy.Selector,
	templates, generative problem.ContentProvider, opts ...Option) *Engine {

	def := DefaultConfig()
	if cfg.BaseRewards == nil {
		cfg.BaseRewards = def.BaseRewards
	}
	if cfg.ColdReadTimeout <= 0 {
		cfg.ColdReadTimeout = def.ColdReadTimeout
	}
	if cfg.AsyncTimeout <= 0 {
		cfg.AsyncTimeout = def.AsyncTimeout
	}
	if cfg.MistakeContextLimit <= 0 {
		cfg.MistakeContextLimit = def.MistakeContextLimit
	}

	e := &Engine{
		cfg:        cfg,
		cache:      c,
		durable:    durable,
		attempts:   attempts,
		history:    history,
		selector:   selector,
		templates:  templates,
		generative: generative,
		roll:       rand.Float64,
		now:        time.Now,
		spawn:      func(task func()) { go task() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate creates a new problem session for the learner and returns the
// learner-visible view. The canonical answer never leaves the engine.
func (e *Engine) Generate(ctx context.Context, learnerID string, topic, difficulty int) (*ProblemView, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("learner id is required")
	}
	if topic < problem.MinTopic || topic > problem.MaxTopic {
		return nil, fmt.Errorf("topic %d out of range [%d, %d]", topic, problem.MinTopic, problem.MaxTopic)
	}
	if difficulty < problem.DifficultyEasy || difficulty > problem.DifficultyHard {
		return nil, fmt.Errorf("difficulty %d out of range [%d, %d]", difficulty, problem.DifficultyEasy, problem.DifficultyHard)
	}

	decision := e.selector.Select(ctx, learnerID, topic, difficulty)
	primary := e.providerFor(decision)

	input := problem.GenerateInput{
		LearnerID:  learnerID,
		Topic:      topic,
		Difficulty: difficulty,
	}
	if primary == e.generative {
		input.RecentMistakes = e.recentMistakes(ctx, learnerID, topic)
	}

	sess, err := primary.Generate(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s pathway failed, retrying generative: %v\n", decision, err)
		input.RecentMistakes = e.recentMistakes(ctx, learnerID, topic)
		sess, err = e.generative.Generate(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
		}
	}

	e.cache.Put(sess)
	e.replicate(sess)

	return &ProblemView{
		SessionID:      sess.ID,
		Narrative:      sess.Narrative,
		Hint:           sess.Hint,
		Equation:       sess.Equation,
		Topic:          sess.Topic,
		Difficulty:     sess.Difficulty,
		VisualMetadata: sess.VisualMetadata,
	}, nil
}

// Submit validates an answer against the learner's session. Wrong answers
// leave the session cached for retry until it expires; a correct answer
// completes and evicts it and earns a reward.
func (e *Engine) Submit(ctx context.Context, learnerID, sessionID string, rawAnswer any, elapsedSec, hintsUsed int) (*SubmissionResult, error) {
	sess, ok := e.cache.Get(learnerID, sessionID)
	if !ok {
		sess = e.coldRead(ctx, learnerID, sessionID)
	}
	if sess == nil {
		return &SubmissionResult{
			Feedback: "That problem was not found or has expired. Ask for a new one.",
			NotFound: true,
		}, nil
	}

	answer := NormalizeAnswer(rawAnswer)
	correct := answer == sess.Answer

	result := &SubmissionResult{
		Correct:         correct,
		CanonicalAnswer: sess.Answer,
	}

	if correct {
		e.cache.Complete(learnerID, sessionID)
		result.Reward = computeReward(e.cfg.BaseRewards, sess.Difficulty, elapsedSec)
		result.Feedback = "Correct!"
		if sess.Equation != "" {
			result.Feedback = fmt.Sprintf("Correct! %s%d.", strings.TrimSuffix(sess.Equation, "?"), sess.Answer)
		}
		e.markComplete(sessionID)
	} else {
		result.Feedback = "Not quite. Read the problem again and try once more."
	}

	e.logAttempt(problem.Attempt{
		LearnerID:  learnerID,
		SessionID:  sessionID,
		TemplateID: sess.TemplateID,
		Topic:      sess.Topic,
		Difficulty: sess.Difficulty,
		Equation:   sess.Equation,
		Answer:     answer,
		Expected:   sess.Answer,
		Correct:    correct,
		ElapsedSec: elapsedSec,
		HintsUsed:  hintsUsed,
		Reward:     result.Reward,
	})

	return result, nil
}

// AdminStats reports cache occupancy and traffic counters.
func (e *Engine) AdminStats() Stats {
	s := e.cache.Stats()
	return Stats{
		TotalCached:         s.Total,
		ActiveCached:        s.Active,
		ExpiredPendingSweep: s.ExpiredPendingSweep,
		UniqueLearners:      s.UniqueLearners,
		Hits:                s.Hits,
		Misses:              s.Misses,
		Evictions:           s.Evictions,
	}
}

// StartBackground launches the cache sweeper and the durable purge loop.
// Both stop when ctx is cancelled.
func (e *Engine) StartBackground(ctx context.Context) {
	e.cache.StartSweeper(ctx)
	if purger, ok := e.durable.(expiredPurger); ok {
		go e.purgeLoop(ctx, purger)
	}
}

// expiredPurger is implemented by durable stores that can drop stale rows.
type expiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

func (e *Engine) purgeLoop(ctx context.Context, purger expiredPurger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(context.Background(), e.cfg.AsyncTimeout)
			if _, err := purger.PurgeExpired(pctx, e.now()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: durable purge failed: %v\n", err)
			}
			cancel()
		}
	}
}

func (e *Engine) providerFor(decision strategy.Decision) problem.ContentProvider {
	switch decision {
	case strategy.AiPersonalized:
		return e.generative
	case strategy.HybridEnhanced:
		if e.roll() < strategy.TemplateShare {
			return e.templates
		}
		return e.generative
	default:
		return e.templates
	}
}

// recentMistakes is best-effort context for the generative pathway; a
// history failure never blocks generation.
func (e *Engine) recentMistakes(ctx context.Context, learnerID string, topic int) []string {
	if e.history == nil {
		return nil
	}
	mistakes, err := e.history.RecentMistakes(ctx, learnerID, topic, e.cfg.MistakeContextLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load mistake context: %v\n", err)
		return nil
	}
	return mistakes
}

// coldRead recovers a session from the durable store after a cache miss,
// repopulating the cache on success. Only live sessions owned by the
// learner qualify.
func (e *Engine) coldRead(ctx context.Context, learnerID, sessionID string) *problem.Session {
	if e.durable == nil {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, e.cfg.ColdReadTimeout)
	defer cancel()

	sess, err := e.durable.Get(rctx, learnerID, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cold session read failed: %v\n", err)
		return nil
	}
	if sess == nil || sess.Completed || sess.Expired(e.now()) {
		return nil
	}

	e.cache.Put(sess)
	return sess
}

// replicate schedules the asynchronous durable backup of a fresh session.
func (e *Engine) replicate(sess *problem.Session) {
	if e.durable == nil {
		return
	}
	snapshot := sess.Clone()
	e.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.AsyncTimeout)
		defer cancel()
		if err := e.durable.Upsert(ctx, snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "warning: durable session write failed: %v\n", err)
		}
	})
}

func (e *Engine) markComplete(sessionID string) {
	if e.durable == nil {
		return
	}
	e.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.AsyncTimeout)
		defer cancel()
		if err := e.durable.MarkComplete(ctx, sessionID); err != nil {
			fmt.Fprintf(os.Stderr, "warning: durable completion write failed: %v\n", err)
		}
	})
}

// logAttempt appends the attempt record off the response path. A log
// failure never surfaces to the learner.
func (e *Engine) logAttempt(a problem.Attempt) {
	if e.attempts == nil {
		return
	}
	e.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.AsyncTimeout)
		defer cancel()
		if err := e.attempts.Record(ctx, a); err != nil {
			fmt.Fprintf(os.Stderr, "warning: attempt log write failed: %v\n", err)
		}
	})
}
