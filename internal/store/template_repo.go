package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mathquest/engine/internal/template"
)

// TemplateRepo is a database-backed template catalog. Rows are written by
// the seed command; at generation time the catalog is read-only.
type TemplateRepo struct {
	db *sql.DB
}

var _ template.Catalog = (*TemplateRepo)(nil)

// ActiveTemplates returns the active templates serving the topic and
// difficulty. Topic membership is filtered in Go; the topics column holds a
// JSON array and SQLite has no cheap containment match for it.
func (r *TemplateRepo) ActiveTemplates(ctx context.Context, topic, difficulty int) ([]template.Template, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, narrative, hint, equation, variables, topics,
		       difficulty, quality, active, visual_metadata
		FROM templates
		WHERE active = 1 AND difficulty = ?`,
		difficulty,
	)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		if t.AppliesTo(topic, difficulty) {
			out = append(out, t)
		}
	}
	return out, rows.Err()
}

// Save writes or replaces a template row. Used by seeding; quality and
// active state are replaced wholesale.
func (r *TemplateRepo) Save(ctx context.Context, t template.Template) error {
	variables, err := json.Marshal(t.Variables)
	if err != nil {
		return fmt.Errorf("marshal variables: %w", err)
	}
	topics, err := json.Marshal(t.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	var visual sql.NullString
	if t.VisualMetadata != nil {
		raw, err := json.Marshal(t.VisualMetadata)
		if err != nil {
			return fmt.Errorf("marshal visual metadata: %w", err)
		}
		visual = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO templates
			(id, category, narrative, hint, equation, variables, topics,
			 difficulty, quality, active, visual_metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			category = excluded.category,
			narrative = excluded.narrative,
			hint = excluded.hint,
			equation = excluded.equation,
			variables = excluded.variables,
			topics = excluded.topics,
			difficulty = excluded.difficulty,
			quality = excluded.quality,
			active = excluded.active,
			visual_metadata = excluded.visual_metadata`,
		t.ID, t.Category, t.Narrative, t.Hint, t.Equation, string(variables),
		string(topics), t.Difficulty, t.Quality, boolToInt(t.Active), visual,
	)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// Count returns the number of template rows.
func (r *TemplateRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return n, nil
}

func scanTemplate(rows *sql.Rows) (template.Template, error) {
	var (
		t         template.Template
		variables string
		topics    string
		active    int
		visual    sql.NullString
	)
	err := rows.Scan(
		&t.ID, &t.Category, &t.Narrative, &t.Hint, &t.Equation,
		&variables, &topics, &t.Difficulty, &t.Quality, &active, &visual,
	)
	if err != nil {
		return t, fmt.Errorf("scan template: %w", err)
	}

	if err := json.Unmarshal([]byte(variables), &t.Variables); err != nil {
		return t, fmt.Errorf("unmarshal variables: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &t.Topics); err != nil {
		return t, fmt.Errorf("unmarshal topics: %w", err)
	}
	if visual.Valid {
		if err := json.Unmarshal([]byte(visual.String), &t.VisualMetadata); err != nil {
			return t, fmt.Errorf("unmarshal visual metadata: %w", err)
		}
	}
	t.Active = active != 0
	return t, nil
}
