package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mathquest/engine/internal/problem"
)

// SessionRepo is the durable session backup. The in-memory cache is the
// source of truth while a session is hot; these rows exist so a restart does
// not strand learners mid-problem.
type SessionRepo struct {
	db *sql.DB
}

var _ problem.DurableStore = (*SessionRepo)(nil)

// Upsert writes or replaces the row keyed by the session ID.
func (r *SessionRepo) Upsert(ctx context.Context, s *problem.Session) error {
	bindings, err := json.Marshal(s.Bindings)
	if err != nil {
		return fmt.Errorf("marshal bindings: %w", err)
	}

	var visual sql.NullString
	if s.VisualMetadata != nil {
		raw, err := json.Marshal(s.VisualMetadata)
		if err != nil {
			return fmt.Errorf("marshal visual metadata: %w", err)
		}
		visual = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions
			(id, learner_id, template_id, narrative, hint, equation, answer,
			 topic, difficulty, bindings, visual_metadata,
			 created_at, expires_at, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			narrative = excluded.narrative,
			hint = excluded.hint,
			equation = excluded.equation,
			answer = excluded.answer,
			bindings = excluded.bindings,
			visual_metadata = excluded.visual_metadata,
			expires_at = excluded.expires_at,
			completed = excluded.completed`,
		s.ID, s.LearnerID, s.TemplateID, s.Narrative, s.Hint, s.Equation,
		s.Answer, s.Topic, s.Difficulty, string(bindings), visual,
		s.CreatedAt.Unix(), s.ExpiresAt.Unix(), boolToInt(s.Completed),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Get returns the session owned by learnerID with the given ID, or
// (nil, nil) when no such row exists.
func (r *SessionRepo) Get(ctx context.Context, learnerID, sessionID string) (*problem.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, learner_id, template_id, narrative, hint, equation, answer,
		       topic, difficulty, bindings, visual_metadata,
		       created_at, expires_at, completed
		FROM sessions
		WHERE id = ? AND learner_id = ?`,
		sessionID, learnerID,
	)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// QueryActive returns incomplete, unexpired sessions for a learner,
// optionally filtered by topic (0 means any). Newest first.
func (r *SessionRepo) QueryActive(ctx context.Context, learnerID string, topic int) ([]*problem.Session, error) {
	query := `
		SELECT id, learner_id, template_id, narrative, hint, equation, answer,
		       topic, difficulty, bindings, visual_metadata,
		       created_at, expires_at, completed
		FROM sessions
		WHERE learner_id = ? AND completed = 0 AND expires_at > ?`
	args := []any{learnerID, time.Now().Unix()}
	if topic != 0 {
		query += ` AND topic = ?`
		args = append(args, topic)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*problem.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// MarkComplete flips the completion flag on the stored row. Marking an
// already-complete or missing row is not an error.
func (r *SessionRepo) MarkComplete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET completed = 1 WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("mark session complete: %w", err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry is in the past, returning the
// number removed. Completed rows are kept for history.
func (r *SessionRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE completed = 0 AND expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*problem.Session, error) {
	var (
		s         problem.Session
		bindings  string
		visual    sql.NullString
		createdAt int64
		expiresAt int64
		completed int
	)
	err := row.Scan(
		&s.ID, &s.LearnerID, &s.TemplateID, &s.Narrative, &s.Hint, &s.Equation,
		&s.Answer, &s.Topic, &s.Difficulty, &bindings, &visual,
		&createdAt, &expiresAt, &completed,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(bindings), &s.Bindings); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", err)
	}
	if visual.Valid {
		if err := json.Unmarshal([]byte(visual.String), &s.VisualMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal visual metadata: %w", err)
		}
	}
	s.CreatedAt = time.Unix(createdAt, 0)
	s.ExpiresAt = time.Unix(expiresAt, 0)
	s.Completed = completed != 0
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
