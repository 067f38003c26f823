package template

import (
	"context"
	"math/rand/v2"

	"github.com/mathquest/engine/internal/problem"
)

// defaultSubjects is the built-in subject pool used when no external
// content catalog is wired in.
var defaultSubjects = []problem.Subject{
	{ID: "apples", DisplayName: "apples"},
	{ID: "marbles", DisplayName: "marbles"},
	{ID: "stickers", DisplayName: "stickers"},
	{ID: "crayons", DisplayName: "crayons"},
	{ID: "seashells", DisplayName: "seashells"},
	{ID: "balloons", DisplayName: "balloons"},
	{ID: "cookies", DisplayName: "cookies"},
}

// StaticSubjects picks uniformly from a fixed subject pool.
type StaticSubjects struct {
	subjects []problem.Subject
	pick     func(n int) int
}

// NewStaticSubjects creates a source over the given pool, or the built-in
// pool when none is supplied.
func NewStaticSubjects(subjects ...problem.Subject) *StaticSubjects {
	if len(subjects) == 0 {
		subjects = defaultSubjects
	}
	return &StaticSubjects{subjects: subjects, pick: rand.IntN}
}

func (s *StaticSubjects) PickSubject(_ context.Context, _ int) (problem.Subject, error) {
	return s.subjects[s.pick(len(s.subjects))], nil
}
