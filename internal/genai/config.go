package genai

// Config controls the generative provider.
type Config struct {
	// Validators run in order on every generated problem; the first
	// failure rejects it.
	Validators []Validator

	// MaxTokens is the token budget for the model response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64

	// MaxRecentMistakes caps how many prior wrong attempts go into the
	// prompt.
	MaxRecentMistakes int
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&FactorRangeValidator{},
		},
		MaxTokens:         512,
		Temperature:       0.7,
		MaxRecentMistakes: 5,
	}
}
