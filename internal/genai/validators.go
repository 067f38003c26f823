package genai

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(wp *WordProblem, _, _ int) *ValidationError {
	if wp.Narrative == "" {
		return &ValidationError{Validator: v.Name(), Message: "narrative is empty"}
	}
	if len(wp.Narrative) > 500 {
		return &ValidationError{Validator: v.Name(), Message: "narrative exceeds 500 characters"}
	}
	if wp.Hint == "" {
		return &ValidationError{Validator: v.Name(), Message: "hint is empty"}
	}
	if wp.Equation == "" {
		return &ValidationError{Validator: v.Name(), Message: "equation is empty"}
	}
	return nil
}

// FactorRangeValidator enforces the generative factor bound: a positive
// integer no greater than 9.
type FactorRangeValidator struct{}

func (v *FactorRangeValidator) Name() string { return "factor-range" }

func (v *FactorRangeValidator) Validate(wp *WordProblem, _, _ int) *ValidationError {
	if wp.Factor < 1 || wp.Factor > 9 {
		return &ValidationError{Validator: v.Name(), Message: "factor must be between 1 and 9"}
	}
	return nil
}
