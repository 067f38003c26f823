package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mathquest/engine/internal/llm"
)

// EventRepo appends model-request events, sharing the global sequence
// counter with the attempt log.
type EventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ llm.EventSink = (*EventRepo)(nil)

// AppendLLMRequest stores one model call record.
func (r *EventRepo) AppendLLMRequest(ctx context.Context, ev llm.RequestEvent) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO llm_requests
			(sequence, provider, model, purpose, input_tokens, output_tokens,
			 latency_ms, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seq, ev.Provider, ev.Model, ev.Purpose, ev.InputTokens,
		ev.OutputTokens, ev.LatencyMs, boolToInt(ev.Success),
		ev.ErrorMessage, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("append llm request event: %w", err)
	}
	return nil
}
