package league

import (
	"fmt"
	"math/rand"
	"strings"
)

// Roster is the registry of teams and their strength ratings for a session.
// It keeps insertion order, which is also the tie-break order of the table.
type Roster struct {
	teams []Team
	index map[string]int
}

// DefaultRoster returns the twenty clubs the league ships with.
func DefaultRoster() *Roster {
	r, _ := NewRoster([]Team{
		{"Arsenal", 88}, {"Chelsea", 85}, {"Liverpool", 90}, {"Man City", 92},
		{"Man Utd", 84}, {"Tottenham", 83}, {"Leicester", 80}, {"Everton", 78},
		{"West Ham", 76}, {"Southampton", 74}, {"Leeds", 72}, {"Wolves", 71},
		{"Brighton", 70}, {"Newcastle", 69}, {"Crystal Palace", 68},
		{"Burnley", 66}, {"Watford", 65}, {"Norwich", 63}, {"Brentford", 64}, {"Fulham", 67},
	})
	return r
}

// NewRoster validates teams and builds a roster from them.
func NewRoster(teams []Team) (*Roster, error) {
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: need at least two teams, got %d", ErrInvalidRoster, len(teams))
	}
	r := &Roster{
		teams: make([]Team, 0, len(teams)),
		index: make(map[string]int, len(teams)),
	}
	for _, t := range teams {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("%w: blank team name", ErrInvalidRoster)
		}
		if t.Strength <= 0 {
			return nil, fmt.Errorf("%w: %q has strength %d", ErrInvalidRoster, t.Name, t.Strength)
		}
		if _, dup := r.index[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate team %q", ErrInvalidRoster, t.Name)
		}
		r.index[t.Name] = len(r.teams)
		r.teams = append(r.teams, t)
	}
	return r, nil
}

// Teams returns a copy of the roster in insertion order.
func (r *Roster) Teams() []Team {
	out := make([]Team, len(r.teams))
	copy(out, r.teams)
	return out
}

// Names returns team names in insertion order.
func (r *Roster) Names() []string {
	out := make([]string, len(r.teams))
	for i, t := range r.teams {
		out[i] = t.Name
	}
	return out
}

func (r *Roster) Len() int { return len(r.teams) }

// Lookup returns the named team.
func (r *Roster) Lookup(name string) (Team, error) {
	i, ok := r.index[name]
	if !ok {
		return Team{}, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	}
	return r.teams[i], nil
}

// Resample returns a copy of the roster with every strength drawn
// uniformly from [lo, hi].
func (r *Roster) Resample(rng *rand.Rand, lo, hi int) *Roster {
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < 1 {
		lo = 1
	}
	hi = max(hi, lo)
	out := &Roster{
		teams: make([]Team, len(r.teams)),
		index: make(map[string]int, len(r.teams)),
	}
	for i, t := range r.teams {
		out.teams[i] = Team{Name: t.Name, Strength: lo + rng.Intn(hi-lo+1)}
		out.index[t.Name] = i
	}
	return out
}
