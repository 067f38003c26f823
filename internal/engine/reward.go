package engine

// timeBonusWindowSec is the window within which faster answers earn a
// bonus: one point per unused second.
const timeBonusWindowSec = 30

// computeReward is base-by-difficulty plus the time bonus; never negative.
func computeReward(baseRewards map[int]int, difficulty, elapsedSec int) int {
	bonus := timeBonusWindowSec - elapsedSec
	if bonus < 0 {
		bonus = 0
	}
	return baseRewards[difficulty] + bonus
}
