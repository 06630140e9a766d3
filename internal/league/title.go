package league

import (
	"math"
	"math/rand"
	"sort"
)

// TitleOdds estimates each team's chance of topping the table after the
// given number of further random rounds, by simulating the rest of the
// season runs times from the current standings. table is not modified.
func TitleOdds(roster *Roster, table *Table, rounds, runs int, rng *rand.Rand) []Prediction {
	if runs <= 0 {
		runs = 1
	}
	names := roster.Names()
	sim := NewSimulator(rng)

	// 1) count how many times each team finishes top
	wins := make(map[string]int, len(names))
	for i := 0; i < runs; i++ {
		wins[simulateChampion(roster, table.Clone(), names, rounds, sim, rng)]++
	}

	// 2) turn counts into percentages
	preds := make([]Prediction, 0, len(names))
	for _, n := range names {
		p := float64(wins[n]) / float64(runs) * 100.0
		preds = append(preds, Prediction{Team: n, Probability: math.Round(p*100) / 100})
	}

	// 3) sort descending by probability, roster order on ties
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})
	return preds
}

func simulateChampion(roster *Roster, table *Table, names []string, rounds int, sim *Simulator, rng *rand.Rand) string {
	for r := 0; r < rounds; r++ {
		for _, f := range GenerateFixtures(names, r+1, rng).Fixtures {
			home, _ := roster.Lookup(f.Home)
			away, _ := roster.Lookup(f.Away)
			hg, ag := sim.Simulate(home, away)
			_ = table.ApplyResult(f.Home, f.Away, hg, ag)
		}
	}
	return table.Rank()[0].Team
}
