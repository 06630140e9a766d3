package league

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
)

// Table is the mutable league table. ApplyResult is not idempotent:
// applying the same result twice counts it twice.
type Table struct {
	rows  []*StandingsRow
	index map[string]*StandingsRow
}

// NewTable creates a zeroed row per team, in the given order.
func NewTable(names []string) *Table {
	t := &Table{
		rows:  make([]*StandingsRow, 0, len(names)),
		index: make(map[string]*StandingsRow, len(names)),
	}
	for _, n := range names {
		row := &StandingsRow{Team: n}
		t.rows = append(t.rows, row)
		t.index[n] = row
	}
	return t
}

// ApplyResult folds one score into both teams' rows.
func (t *Table) ApplyResult(home, away string, homeGoals, awayGoals int) error {
	h, ok := t.index[home]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, home)
	}
	a, ok := t.index[away]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, away)
	}
	if home == away {
		return fmt.Errorf("%w: %q", ErrSameTeam, home)
	}
	if homeGoals < 0 || awayGoals < 0 {
		return fmt.Errorf("%w: %d-%d", ErrNegativeGoals, homeGoals, awayGoals)
	}

	// 1) played and goals
	h.Played++
	a.Played++
	h.GoalsFor += homeGoals
	h.GoalsAgainst += awayGoals
	a.GoalsFor += awayGoals
	a.GoalsAgainst += homeGoals
	h.GoalDiff = h.GoalsFor - h.GoalsAgainst
	a.GoalDiff = a.GoalsFor - a.GoalsAgainst

	// 2) win/draw/loss and points
	switch {
	case homeGoals > awayGoals:
		h.Won++
		a.Lost++
		h.Points += 3
	case homeGoals < awayGoals:
		a.Won++
		h.Lost++
		a.Points += 3
	default:
		h.Drawn++
		a.Drawn++
		h.Points++
		a.Points++
	}
	return nil
}

// Row returns a copy of the team's row.
func (t *Table) Row(name string) (StandingsRow, error) {
	r, ok := t.index[name]
	if !ok {
		return StandingsRow{}, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	}
	return *r, nil
}

// Rank returns rows by points, goal difference, then goals scored.
// Remaining ties keep insertion order.
func (t *Table) Rank() []StandingsRow {
	entries := make([]StandingsRow, len(t.rows))
	for i, r := range t.rows {
		entries[i] = *r
	}
	sortStandings(entries)
	return entries
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		rows:  make([]*StandingsRow, len(t.rows)),
		index: make(map[string]*StandingsRow, len(t.rows)),
	}
	for i, r := range t.rows {
		row := *r
		c.rows[i] = &row
		c.index[row.Team] = &row
	}
	return c
}

func sortStandings(entries []StandingsRow) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		return a.GoalsFor > b.GoalsFor
	})
}

func PrintTable(w io.Writer, label string, table []StandingsRow) {
	fmt.Fprintln(w, label)
	fmt.Fprintf(w, "%-5s %-15s %2s %2s %2s %2s %3s %3s %3s %3s\n",
		"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts")
	for i, entry := range table {
		fmt.Fprintf(w, "%-5s %-15s %2d %2d %2d %2d %3d %3d %3d %3d\n",
			humanize.Ordinal(i+1),
			entry.Team,
			entry.Played,
			entry.Won,
			entry.Drawn,
			entry.Lost,
			entry.GoalsFor,
			entry.GoalsAgainst,
			entry.GoalDiff,
			entry.Points,
		)
	}
}
