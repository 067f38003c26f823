// Package strategy decides which content pathway serves a generate request.
//
// The decision is a pure function over two counters (available template
// count and the learner's historical correct count), driven by an ordered
// rule table so it is unit-testable independent of I/O.
package strategy

import (
	"context"
	"fmt"
	"os"

	"github.com/mathquest/engine/internal/problem"
	"github.com/mathquest/engine/internal/template"
)

// Decision is the content pathway chosen for one generate call.
type Decision string

const (
	// TemplatePriority serves from the template catalog.
	TemplatePriority Decision = "template_priority"

	// HybridEnhanced rolls a per-request split between the template and
	// generative pathways, falling back to generative on template failure.
	HybridEnhanced Decision = "hybrid_enhanced"

	// AiPersonalized serves from the generative backend with the learner's
	// recent-mistake context.
	AiPersonalized Decision = "ai_personalized"
)

// TemplateShare is the probability HybridEnhanced picks the template
// pathway on a given request.
const TemplateShare = 0.6

// minTemplatesForPriority and friends parameterize the rule table.
const (
	minTemplatesForPriority = 3
	minTemplatesForHybrid   = 1
	minCorrectForHybrid     = 10
)

// Inputs are the two counters the decision is computed from.
type Inputs struct {
	TemplateCount     int
	HistoricalCorrect int
}

type rule struct {
	decision Decision
	matches  func(Inputs) bool
}

// rules is order-sensitive: the first match wins.
var rules = []rule{
	{TemplatePriority, func(in Inputs) bool {
		return in.TemplateCount >= minTemplatesForPriority
	}},
	{HybridEnhanced, func(in Inputs) bool {
		return in.TemplateCount >= minTemplatesForHybrid && in.HistoricalCorrect >= minCorrectForHybrid
	}},
	{AiPersonalized, func(Inputs) bool { return true }},
}

// Decide applies the rule table to the inputs.
func Decide(in Inputs) Decision {
	for _, r := range rules {
		if r.matches(in) {
			return r.decision
		}
	}
	// The last rule always matches; this is unreachable.
	return AiPersonalized
}

// Selector computes decision inputs from the template engine and attempt
// history. Any error while computing them degrades to TemplatePriority
// rather than failing the request.
type Selector struct {
	engine  *template.Engine
	history problem.AttemptHistory
}

// NewSelector creates a Selector. A nil history counts as zero correct
// answers.
func NewSelector(engine *template.Engine, history problem.AttemptHistory) *Selector {
	return &Selector{engine: engine, history: history}
}

// Select chooses the pathway for one request.
func (s *Selector) Select(ctx context.Context, learnerID string, topic, difficulty int) Decision {
	candidates, err := s.engine.ListCandidates(ctx, topic, difficulty, learnerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: strategy availability check failed, defaulting to template priority: %v\n", err)
		return TemplatePriority
	}

	in := Inputs{TemplateCount: len(candidates)}

	if s.history != nil {
		correct, err := s.history.CorrectCount(ctx, learnerID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: strategy history check failed, defaulting to template priority: %v\n", err)
			return TemplatePriority
		}
		in.HistoricalCorrect = correct
	}

	return Decide(in)
}
