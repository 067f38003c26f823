package template

import (
	"context"
	"fmt"

	"github.com/mathquest/engine/internal/problem"
)

// Provider is the template pathway's problem.ContentProvider. It renders
// the highest-quality unused candidate for the request.
type Provider struct {
	engine   *Engine
	subjects problem.SubjectSource
}

// NewProvider wraps an engine and subject source as a content provider.
func NewProvider(engine *Engine, subjects problem.SubjectSource) *Provider {
	return &Provider{engine: engine, subjects: subjects}
}

func (p *Provider) Generate(ctx context.Context, input problem.GenerateInput) (*problem.Session, error) {
	candidates, err := p.engine.ListCandidates(ctx, input.Topic, input.Difficulty, input.LearnerID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("topic %d difficulty %d: %w", input.Topic, input.Difficulty, problem.ErrNoContent)
	}

	subject, err := p.subjects.PickSubject(ctx, input.Topic)
	if err != nil {
		return nil, fmt.Errorf("pick subject: %w", err)
	}

	return p.engine.Render(candidates[0], subject, input.Topic, input.LearnerID)
}
