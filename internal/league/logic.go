// internal/league/logic.go
package league

import (
	"math"
	"math/rand"
)

const (
	goalRateDivisor = 50.0
	goalRateScale   = 1.5
	goalRateFloor   = 0.2
)

// GoalRate is the Poisson mean of goals scored by a side of the given strength.
func GoalRate(strength int) float64 {
	return math.Max(goalRateFloor, float64(strength)/goalRateDivisor*goalRateScale)
}

// Simulator draws match scores from team strengths.
// It is not safe for concurrent use; the rng is owned by the caller.
type Simulator struct {
	rng *rand.Rand
}

func NewSimulator(rng *rand.Rand) *Simulator {
	return &Simulator{rng: rng}
}

// Simulate returns home and away goals. Each side's goals are an independent
// Poisson draw keyed off its own strength; there is no home advantage.
func (s *Simulator) Simulate(home, away Team) (homeGoals, awayGoals int) {
	homeGoals = samplePoisson(s.rng, GoalRate(home.Strength))
	awayGoals = samplePoisson(s.rng, GoalRate(away.Strength))
	return
}

// GenerateFixtures shuffles names and pairs neighbours into a round.
// With an odd count the team left over after the shuffle gets the bye.
func GenerateFixtures(names []string, round int, rng *rand.Rand) Round {
	order := make([]string, len(names))
	copy(order, names)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	r := Round{Number: round, Fixtures: make([]Fixture, 0, len(order)/2)}
	for i := 0; i+1 < len(order); i += 2 {
		r.Fixtures = append(r.Fixtures, Fixture{Round: round, Home: order[i], Away: order[i+1]})
	}
	if len(order)%2 != 0 {
		r.Bye = order[len(order)-1]
	}
	return r
}

// samplePoisson generates a random sample from a Poisson distribution with mean lambda
func samplePoisson(rng *rand.Rand, lambda float64) int {
	L := math.Exp(-lambda)
	p := 1.0
	k := 0
	for p > L {
		k++
		p *= rng.Float64()
	}
	return k - 1
}
