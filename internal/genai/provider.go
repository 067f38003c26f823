package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mathquest/engine/internal/llm"
	"github.com/mathquest/engine/internal/problem"
)

// Provider implements problem.ContentProvider against a generative model.
type Provider struct {
	model llm.Provider
	cfg   Config
	now   func() time.Time
}

// New creates a generative provider over the given model client.
func New(model llm.Provider, cfg Config) *Provider {
	return &Provider{model: model, cfg: cfg, now: time.Now}
}

// Generate asks the model for a word problem and assembles a session. The
// answer is computed here as topic × factor; the model never supplies it.
func (p *Provider) Generate(ctx context.Context, input problem.GenerateInput) (*problem.Session, error) {
	ctx = llm.WithPurpose(ctx, "problem-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, p.cfg)},
		},
		Schema:      WordProblemSchema,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}

	resp, err := p.model.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generative backend: %w", err)
	}

	var wp WordProblem
	if err := json.Unmarshal(resp.Content, &wp); err != nil {
		return nil, fmt.Errorf("parse word problem response: %w", err)
	}

	for _, v := range p.cfg.Validators {
		if verr := v.Validate(&wp, input.Topic, input.Difficulty); verr != nil {
			return nil, verr
		}
	}

	return &problem.Session{
		ID:         uuid.New().String(),
		LearnerID:  input.LearnerID,
		TemplateID: problem.SourceGenerative,
		Narrative:  wp.Narrative,
		Hint:       wp.Hint,
		Equation:   wp.Equation,
		Answer:     input.Topic * wp.Factor,
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Bindings:   map[string]int{"a": input.Topic, "b": wp.Factor},
		CreatedAt:  p.now(),
	}, nil
}
