package league

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	firstGoalMinute = 5
	lastGoalMinute  = 84
	blockMinutes    = 10
	fullTime        = 90
)

// Commentary builds a minute-by-minute feed for a final score. Goal minutes
// are sampled without replacement from 5..84; the home side is credited
// until its goals are used up, then the away side.
func Commentary(rng *rand.Rand, home, away string, homeGoals, awayGoals int) []string {
	total := homeGoals + awayGoals
	span := lastGoalMinute - firstGoalMinute + 1
	if total > span {
		total = span
	}
	minutes := rng.Perm(span)[:total]
	for i := range minutes {
		minutes[i] += firstGoalMinute
	}
	sort.Ints(minutes)

	var lines []string
	homeCount := 0
	for m := 0; m <= fullTime; m += blockMinutes {
		for len(minutes) > 0 && minutes[0] <= m {
			scorer := away
			if homeCount < homeGoals {
				scorer = home
				homeCount++
			}
			lines = append(lines, fmt.Sprintf("%d' - Goal for %s!", m, scorer))
			minutes = minutes[1:]
		}
		lines = append(lines, fmt.Sprintf("%d' - End to end play...", m))
	}
	lines = append(lines, fmt.Sprintf("FT: %s %d - %d %s", home, homeGoals, awayGoals, away))
	return lines
}
