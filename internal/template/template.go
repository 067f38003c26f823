package template

import (
	"context"
	"fmt"
)

// Role tags a template variable with its part in the answer invariant.
type Role string

const (
	// RoleTopicAnchor binds to the requested topic; every rendered session
	// carries the topic as this variable's value.
	RoleTopicAnchor Role = "topic_anchor"

	// RoleFactor is the variable the topic is multiplied by; the session's
	// answer is always anchor × factor.
	RoleFactor Role = "factor"

	// RoleAux is flavor only and never feeds the answer.
	RoleAux Role = "aux"
)

// VariableSpec declares one named template variable and its inclusive
// draw range.
type VariableSpec struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
	Role Role   `json:"role"`
}

// Template is an immutable content blueprint. Templates are authored by an
// out-of-scope content-management collaborator and are read-only here.
//
// The three text fields carry named placeholders in {braces}: one per
// declared variable plus {subject} for the content subject's display name.
type Template struct {
	ID       string
	Category string

	Narrative string
	Hint      string
	Equation  string

	Variables []VariableSpec

	// Topics lists the multiplication topics this template applies to.
	Topics []int

	Difficulty int
	Quality    float64
	Active     bool

	// VisualMetadata is an optional nested structure; string leaves are
	// placeholder-substituted during rendering.
	VisualMetadata map[string]any
}

// AppliesTo reports whether the template serves the topic and difficulty.
func (t Template) AppliesTo(topic, difficulty int) bool {
	if !t.Active || t.Difficulty != difficulty {
		return false
	}
	for _, tp := range t.Topics {
		if tp == topic {
			return true
		}
	}
	return false
}

// roles returns the anchor and factor specs, erroring unless the template
// declares exactly one of each.
func (t Template) roles() (anchor, factor VariableSpec, err error) {
	var haveAnchor, haveFactor bool
	for _, v := range t.Variables {
		switch v.Role {
		case RoleTopicAnchor:
			if haveAnchor {
				return anchor, factor, fmt.Errorf("template %s: multiple topic-anchor variables", t.ID)
			}
			anchor, haveAnchor = v, true
		case RoleFactor:
			if haveFactor {
				return anchor, factor, fmt.Errorf("template %s: multiple factor variables", t.ID)
			}
			factor, haveFactor = v, true
		}
	}
	if !haveAnchor || !haveFactor {
		return anchor, factor, fmt.Errorf("template %s: missing topic-anchor or factor variable", t.ID)
	}
	return anchor, factor, nil
}

// Catalog lists active templates. Implementations are read-only to the
// engine; authoring happens elsewhere.
type Catalog interface {
	ActiveTemplates(ctx context.Context, topic, difficulty int) ([]Template, error)
}

// StaticCatalog is an in-memory Catalog over a fixed template set.
type StaticCatalog struct {
	templates []Template
}

// NewStaticCatalog creates a catalog over the given templates.
func NewStaticCatalog(templates []Template) *StaticCatalog {
	return &StaticCatalog{templates: templates}
}

func (c *StaticCatalog) ActiveTemplates(_ context.Context, topic, difficulty int) ([]Template, error) {
	var out []Template
	for _, t := range c.templates {
		if t.AppliesTo(topic, difficulty) {
			out = append(out, t)
		}
	}
	return out, nil
}
