package league

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func checkRowInvariants(t *testing.T, r StandingsRow) {
	t.Helper()
	if r.Played != r.Won+r.Drawn+r.Lost {
		t.Errorf("%s: played %d != W%d+D%d+L%d", r.Team, r.Played, r.Won, r.Drawn, r.Lost)
	}
	if r.Points != 3*r.Won+r.Drawn {
		t.Errorf("%s: points %d != 3*%d+%d", r.Team, r.Points, r.Won, r.Drawn)
	}
	if r.GoalDiff != r.GoalsFor-r.GoalsAgainst {
		t.Errorf("%s: goal diff %d != %d-%d", r.Team, r.GoalDiff, r.GoalsFor, r.GoalsAgainst)
	}
}

func TestTable_ApplyResult(t *testing.T) {
	tests := []struct {
		name         string
		homeG, awayG int
		wantHome     StandingsRow
		wantAway     StandingsRow
	}{
		{
			name: "home win", homeG: 3, awayG: 1,
			wantHome: StandingsRow{Team: "A", Played: 1, Won: 1, GoalsFor: 3, GoalsAgainst: 1, GoalDiff: 2, Points: 3},
			wantAway: StandingsRow{Team: "B", Played: 1, Lost: 1, GoalsFor: 1, GoalsAgainst: 3, GoalDiff: -2},
		},
		{
			name: "away win", homeG: 0, awayG: 2,
			wantHome: StandingsRow{Team: "A", Played: 1, Lost: 1, GoalsAgainst: 2, GoalDiff: -2},
			wantAway: StandingsRow{Team: "B", Played: 1, Won: 1, GoalsFor: 2, GoalDiff: 2, Points: 3},
		},
		{
			name: "draw", homeG: 2, awayG: 2,
			wantHome: StandingsRow{Team: "A", Played: 1, Drawn: 1, GoalsFor: 2, GoalsAgainst: 2, Points: 1},
			wantAway: StandingsRow{Team: "B", Played: 1, Drawn: 1, GoalsFor: 2, GoalsAgainst: 2, Points: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := NewTable([]string{"A", "B", "C"})
			if err := tbl.ApplyResult("A", "B", tt.homeG, tt.awayG); err != nil {
				t.Fatal(err)
			}
			home, _ := tbl.Row("A")
			away, _ := tbl.Row("B")
			untouched, _ := tbl.Row("C")
			if home != tt.wantHome {
				t.Errorf("home row = %+v, want %+v", home, tt.wantHome)
			}
			if away != tt.wantAway {
				t.Errorf("away row = %+v, want %+v", away, tt.wantAway)
			}
			if untouched != (StandingsRow{Team: "C"}) {
				t.Errorf("unrelated row changed: %+v", untouched)
			}
		})
	}
}

func TestTable_ApplyResultErrors(t *testing.T) {
	tbl := NewTable([]string{"A", "B"})
	tests := []struct {
		name       string
		home, away string
		hg, ag     int
		want       error
	}{
		{"unknown home", "Z", "B", 1, 0, ErrUnknownTeam},
		{"unknown away", "A", "Z", 1, 0, ErrUnknownTeam},
		{"same team", "A", "A", 1, 0, ErrSameTeam},
		{"negative goals", "A", "B", -1, 0, ErrNegativeGoals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tbl.ApplyResult(tt.home, tt.away, tt.hg, tt.ag)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	for _, r := range tbl.Rank() {
		if r.Played != 0 {
			t.Errorf("failed apply changed %s: %+v", r.Team, r)
		}
	}
}

// Applying the same result twice counts it twice. Callers are responsible
// for exactly-once application.
func TestTable_ApplyResultIsNotIdempotent(t *testing.T) {
	tbl := NewTable([]string{"A", "B"})
	for i := 0; i < 2; i++ {
		if err := tbl.ApplyResult("A", "B", 2, 1); err != nil {
			t.Fatal(err)
		}
	}
	a, _ := tbl.Row("A")
	b, _ := tbl.Row("B")
	if a.Played != 2 || a.GoalsFor != 4 || a.GoalsAgainst != 2 || a.Points != 6 || a.Won != 2 {
		t.Errorf("home row after double apply = %+v", a)
	}
	if b.Played != 2 || b.GoalsFor != 2 || b.GoalsAgainst != 4 || b.Points != 0 || b.Lost != 2 {
		t.Errorf("away row after double apply = %+v", b)
	}
}

func TestTable_InvariantsUnderRandomPlay(t *testing.T) {
	roster := DefaultRoster()
	tbl := NewTable(roster.Names())
	rng := rand.New(rand.NewSource(99))
	sim := NewSimulator(rng)
	for round := 1; round <= 38; round++ {
		for _, f := range GenerateFixtures(roster.Names(), round, rng).Fixtures {
			h, _ := roster.Lookup(f.Home)
			a, _ := roster.Lookup(f.Away)
			hg, ag := sim.Simulate(h, a)
			if err := tbl.ApplyResult(f.Home, f.Away, hg, ag); err != nil {
				t.Fatal(err)
			}
		}
		for _, r := range tbl.Rank() {
			checkRowInvariants(t, r)
		}
	}
	var gf, ga int
	for _, r := range tbl.Rank() {
		if r.Played != 38 {
			t.Errorf("%s played %d, want 38", r.Team, r.Played)
		}
		gf += r.GoalsFor
		ga += r.GoalsAgainst
	}
	if gf != ga {
		t.Errorf("league goals for %d != goals against %d", gf, ga)
	}
}

func TestTable_Rank(t *testing.T) {
	tbl := NewTable([]string{"A", "B", "C", "D", "E"})
	// A: 3 pts GD +1 GF 1; B: 3 pts GD +3 GF 3; C: 3 pts GD +1 GF 2
	// D: 0 pts GD -2; E: 0 pts GD -3
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(tbl.ApplyResult("A", "D", 1, 0))
	must(tbl.ApplyResult("B", "E", 3, 0))
	must(tbl.ApplyResult("C", "D", 2, 1))

	rows := tbl.Rank()
	var got []string
	for _, r := range rows {
		got = append(got, r.Team)
	}
	want := "B,C,A,D,E"
	if strings.Join(got, ",") != want {
		t.Fatalf("rank = %v, want %s", got, want)
	}
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Points < b.Points ||
			(a.Points == b.Points && a.GoalDiff < b.GoalDiff) ||
			(a.Points == b.Points && a.GoalDiff == b.GoalDiff && a.GoalsFor < b.GoalsFor) {
			t.Errorf("rows %d and %d out of order: %+v %+v", i-1, i, a, b)
		}
	}
}

func TestTable_RankStableOnTies(t *testing.T) {
	names := []string{"Zeta", "Alpha", "Mid"}
	rows := NewTable(names).Rank()
	for i, r := range rows {
		if r.Team != names[i] {
			t.Errorf("position %d = %s, want %s", i, r.Team, names[i])
		}
	}
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := NewTable([]string{"A", "B"})
	c := tbl.Clone()
	if err := c.ApplyResult("A", "B", 1, 0); err != nil {
		t.Fatal(err)
	}
	if r, _ := tbl.Row("A"); r.Played != 0 {
		t.Errorf("clone shares rows with original: %+v", r)
	}
}

func TestPrintTable(t *testing.T) {
	tbl := NewTable([]string{"Arsenal", "Chelsea"})
	_ = tbl.ApplyResult("Chelsea", "Arsenal", 2, 0)
	var buf bytes.Buffer
	PrintTable(&buf, "Round 1", tbl.Rank())
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "1st") || !strings.Contains(lines[2], "Chelsea") {
		t.Errorf("first row = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "2nd") || !strings.Contains(lines[3], "Arsenal") {
		t.Errorf("second row = %q", lines[3])
	}
}
