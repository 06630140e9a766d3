package league

import (
	"math"
	"sort"
)

// ScorerRow is one team's line in the top-scorer chart.
type ScorerRow struct {
	Team    string  `json:"team"`
	Goals   int     `json:"goals"`
	Matches int     `json:"matches"`
	Average float64 `json:"goals_per_match"`
}

// ScorerTally counts goals per team over every recorded match.
type ScorerTally struct {
	order []string
	rows  map[string]*ScorerRow
}

func NewScorerTally(names []string) *ScorerTally {
	t := &ScorerTally{
		order: append([]string(nil), names...),
		rows:  make(map[string]*ScorerRow, len(names)),
	}
	for _, n := range names {
		t.rows[n] = &ScorerRow{Team: n}
	}
	return t
}

// Record adds one match. Unknown teams are ignored; the table rejects them first.
func (t *ScorerTally) Record(home, away string, homeGoals, awayGoals int) {
	for _, side := range []struct {
		team  string
		goals int
	}{{home, homeGoals}, {away, awayGoals}} {
		r, ok := t.rows[side.team]
		if !ok {
			continue
		}
		r.Matches++
		r.Goals += side.goals
		r.Average = math.Round(float64(r.Goals)/float64(r.Matches)*100) / 100
	}
}

// Leaders returns the n best scoring teams, most goals first, then best
// average, then roster order. Teams without a goal are left out. n <= 0
// returns every scorer.
func (t *ScorerTally) Leaders(n int) []ScorerRow {
	out := make([]ScorerRow, 0, len(t.order))
	for _, name := range t.order {
		if r := t.rows[name]; r.Goals > 0 {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		return out[i].Average > out[j].Average
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
