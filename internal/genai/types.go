// Package genai is the generative pathway: it asks a model for a
// multiplication word problem and turns the validated output into a
// session. The model chooses the story and the factor; the engine computes
// the answer itself, so the product invariant can never depend on model
// arithmetic.
package genai

import "fmt"

// WordProblem is the model's raw output after JSON decoding, before
// validation.
type WordProblem struct {
	Narrative string `json:"narrative"`
	Hint      string `json:"hint"`
	Equation  string `json:"equation"`

	// Factor is the second multiplicand; the first is always the requested
	// topic. Must be in [1, 9].
	Factor int `json:"factor"`
}

// Validator checks a generated word problem. Implementations are stateless
// and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages, e.g. "structural".
	Name() string

	// Validate returns nil if the problem passes.
	Validate(wp *WordProblem, topic, difficulty int) *ValidationError
}

// ValidationError describes why a word problem was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
