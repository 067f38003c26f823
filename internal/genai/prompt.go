package genai

import (
	"fmt"
	"strings"

	"github.com/mathquest/engine/internal/problem"
)

const systemPrompt = `You are a math tutor writing multiplication word problems for children in grades 3-5.

Rules:
- Write one word problem whose answer is the given topic multiplied by a factor you choose between 1 and 9.
- Use plain ASCII text. No LaTeX, no Unicode beyond the × sign in the equation and hint.
- The narrative must be a short, self-contained story a child can picture.
- The equation field is the bare sum with the answer blanked, e.g. "4 × 6 = ?".
- The hint restates the story as the multiplication, e.g. "That is 4 × 6."
- Match the requested difficulty: easy keeps the factor small (2-5), medium uses 3-9, hard uses 6-9 and may add a distracting detail.
- Do not reveal or compute the final answer anywhere in the text.
- If recent mistakes are listed, lean toward a story that exercises the same fact family.`

var difficultyLabels = map[int]string{
	problem.DifficultyEasy:   "easy",
	problem.DifficultyMedium: "medium",
	problem.DifficultyHard:   "hard",
}

// buildUserMessage constructs the per-request prompt.
func buildUserMessage(input problem.GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %d (the %d times table)\n", input.Topic, input.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", difficultyLabels[input.Difficulty])

	b.WriteString("\nRecent mistakes by this learner:\n")
	b.WriteString(formatMistakes(input.RecentMistakes, cfg.MaxRecentMistakes))

	return b.String()
}

// formatMistakes renders the most recent wrong attempts, capped at max.
func formatMistakes(mistakes []string, max int) string {
	if len(mistakes) == 0 {
		return "None"
	}
	if max > 0 && len(mistakes) > max {
		mistakes = mistakes[len(mistakes)-max:]
	}

	var b strings.Builder
	for i, m := range mistakes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, m)
	}
	return strings.TrimRight(b.String(), "\n")
}
