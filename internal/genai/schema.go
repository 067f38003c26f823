package genai

import "github.com/mathquest/engine/internal/llm"

// WordProblemSchema defines the JSON schema for generated word problems.
var WordProblemSchema = &llm.Schema{
	Name:        "word-problem",
	Description: "A single multiplication word problem for a young learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"narrative": map[string]any{
				"type":        "string",
				"description": "The word problem shown to the learner, in plain ASCII text",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "A short scaffolding hint that restates the problem as topic × factor",
			},
			"equation": map[string]any{
				"type":        "string",
				"description": "The bare equation with the answer blanked, e.g. \"4 × 6 = ?\"",
			},
			"factor": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     9,
				"description": "The second multiplicand; the first is the requested topic",
			},
		},
		"required":             []any{"narrative", "hint", "equation", "factor"},
		"additionalProperties": false,
	},
}
