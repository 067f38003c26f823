package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mathquest/engine/internal/problem"
)

// AttemptRepo is the append-only attempt log plus the aggregate reads the
// strategy selector and template engine derive from it.
type AttemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var (
	_ problem.AttemptLog     = (*AttemptRepo)(nil)
	_ problem.AttemptHistory = (*AttemptRepo)(nil)
)

// Record appends one attempt. Rows are never updated or deleted.
func (r *AttemptRepo) Record(ctx context.Context, a problem.Attempt) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attempts
			(sequence, learner_id, session_id, template_id, topic, difficulty,
			 equation, answer, expected, correct, elapsed_sec, hints_used,
			 reward, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seq, a.LearnerID, a.SessionID, a.TemplateID, a.Topic, a.Difficulty,
		a.Equation, a.Answer, a.Expected, boolToInt(a.Correct), a.ElapsedSec,
		a.HintsUsed, a.Reward, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// CorrectCount returns the learner's lifetime correct-answer count.
func (r *AttemptRepo) CorrectCount(ctx context.Context, learnerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE learner_id = ? AND correct = 1`,
		learnerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count correct attempts: %w", err)
	}
	return n, nil
}

// RecentTemplateIDs returns the distinct template IDs the learner used
// against the topic within the trailing window. A template counts as used
// once a session was rendered from it, whether or not an answer was ever
// submitted, so the sessions table is consulted alongside the attempt log.
// Generative sessions carry a source marker instead of a template ID and
// are excluded.
func (r *AttemptRepo) RecentTemplateIDs(ctx context.Context, learnerID string, topic int, window time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-window).Unix()
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT template_id FROM (
			SELECT template_id, created_at FROM attempts
			WHERE learner_id = ? AND topic = ?
			UNION ALL
			SELECT template_id, created_at FROM sessions
			WHERE learner_id = ? AND topic = ?
		)
		WHERE created_at >= ? AND template_id != ? AND template_id != ''`,
		learnerID, topic, learnerID, topic, cutoff, problem.SourceGenerative,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent template ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan template id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecentMistakes returns short descriptions of the learner's most recent
// wrong attempts on the topic, newest last, capped at limit.
func (r *AttemptRepo) RecentMistakes(ctx context.Context, learnerID string, topic int, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT equation, answer, expected FROM attempts
		WHERE learner_id = ? AND topic = ? AND correct = 0
		ORDER BY sequence DESC
		LIMIT ?`,
		learnerID, topic, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent mistakes: %w", err)
	}
	defer rows.Close()

	var mistakes []string
	for rows.Next() {
		var (
			equation string
			answer   int
			expected int
		)
		if err := rows.Scan(&equation, &answer, &expected); err != nil {
			return nil, fmt.Errorf("scan mistake: %w", err)
		}
		mistakes = append(mistakes, describeMistake(equation, answer, expected))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query order is newest first; callers want newest last.
	for i, j := 0, len(mistakes)-1; i < j; i, j = i+1, j-1 {
		mistakes[i], mistakes[j] = mistakes[j], mistakes[i]
	}
	return mistakes, nil
}

func describeMistake(equation string, answer, expected int) string {
	if equation == "" {
		return fmt.Sprintf("answered %d, correct answer was %d", answer, expected)
	}
	return fmt.Sprintf("answered %d for %q, correct answer was %d", answer, equation, expected)
}
