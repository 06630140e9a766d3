package league

import (
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/fasthash/fnv1a"
)

// Prediction is one team's chance of finishing top, in percent.
type Prediction struct {
	Team        string  `json:"team"`
	Probability float64 `json:"probability"`
}

// Team represents a club in the league.
type Team struct {
	Name     string `json:"name" yaml:"name"`
	Strength int    `json:"strength" yaml:"strength"`
}

// Fixture is a scheduled pairing for a round, not yet played.
type Fixture struct {
	Round int    `json:"round"`
	Home  string `json:"home"`
	Away  string `json:"away"`
}

// ID identifies the fixture within a session.
func (f Fixture) ID() uint64 {
	h := fnv1a.Init64
	h = fnv1a.AddString64(h, strconv.Itoa(f.Round))
	h = fnv1a.AddString64(h, "|"+f.Home)
	h = fnv1a.AddString64(h, "|"+f.Away)
	return h
}

func (f Fixture) String() string {
	return fmt.Sprintf("%s vs %s", f.Home, f.Away)
}

// Round is one cycle of fixtures. Bye names the team left unpaired
// when the roster has an odd number of clubs.
type Round struct {
	Number   int       `json:"number"`
	Fixtures []Fixture `json:"fixtures"`
	Bye      string    `json:"bye,omitempty"`
}

// MatchResult is a played fixture.
type MatchResult struct {
	Round      int      `json:"round"`
	Home       string   `json:"home"`
	Away       string   `json:"away"`
	HomeGoals  int      `json:"home_goals"`
	AwayGoals  int      `json:"away_goals"`
	Commentary []string `json:"commentary,omitempty"`
}

func (m MatchResult) ScoreLine() string {
	return fmt.Sprintf("%s %d - %d %s",
		m.Home, m.HomeGoals,
		m.AwayGoals, m.Away,
	)
}

// StandingsRow holds the accumulated season statistics for one team.
type StandingsRow struct {
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_difference"`
	Points       int    `json:"points"`
}

// Price is a single decimal price for an outcome label.
type Price struct {
	Label string  `json:"label"`
	Value float64 `json:"price"`
}

// OddsQuote is the set of prices offered on a fixture.
type OddsQuote struct {
	Home   string  `json:"home"`
	Away   string  `json:"away"`
	Prices []Price `json:"prices"`
}

// Price returns the decimal price for label.
func (q OddsQuote) Price(label string) (float64, bool) {
	for _, p := range q.Prices {
		if p.Label == label {
			return p.Value, true
		}
	}
	return 0, false
}

// BetSlipEntry is a selection on the bet slip. Entries are never settled.
type BetSlipEntry struct {
	Match    string    `json:"match"`
	Pick     string    `json:"pick"`
	Price    float64   `json:"price"`
	PlacedAt time.Time `json:"placed_at"`
}
