package league

import (
	"errors"
	"testing"

	"github.com/utakatalp/virtual-football/internal/events"
)

func newTestSession(t *testing.T, variant string, seed int64, bus *events.Bus) *Session {
	t.Helper()
	opts, err := Variant(variant)
	if err != nil {
		t.Fatal(err)
	}
	opts.Seed = seed
	s, err := NewSession(opts, bus)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestVariant(t *testing.T) {
	tests := []struct {
		name       string
		base       float64
		overUnder  bool
		commentary bool
		randomize  bool
		topScorers bool
	}{
		{VariantClassic, BaseClassic, false, true, false, false},
		{VariantSportybet, BaseSportybet, false, false, true, false},
		{VariantMarkets, BaseSportybet, true, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := Variant(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if o.OddsBase != tt.base || o.OverUnder != tt.overUnder ||
				o.Commentary != tt.commentary || o.RandomizeStrengths != tt.randomize ||
				o.TopScorers != tt.topScorers {
				t.Errorf("preset %s = %+v", tt.name, o)
			}
		})
	}
	if _, err := Variant("vegas"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("err = %v, want ErrUnknownVariant", err)
	}
}

func TestSession_GenerateAndPlayRound(t *testing.T) {
	s := newTestSession(t, VariantClassic, 1, nil)

	rnd := s.GenerateFixtures()
	if rnd.Number != 1 || len(rnd.Fixtures) != 10 {
		t.Fatalf("round %d with %d fixtures", rnd.Number, len(rnd.Fixtures))
	}

	results, err := s.PlayRound()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 10 {
		t.Fatalf("played %d matches, want 10", len(results))
	}
	for i, res := range results {
		if res.Home != rnd.Fixtures[i].Home || res.Away != rnd.Fixtures[i].Away {
			t.Errorf("result %d is %s, fixture was %v", i, res.ScoreLine(), rnd.Fixtures[i])
		}
		if len(res.Commentary) == 0 {
			t.Errorf("classic variant result %d has no commentary", i)
		}
	}
	if s.RoundNumber() != 2 {
		t.Errorf("round number = %d, want 2", s.RoundNumber())
	}
	for _, r := range s.Standings() {
		if r.Played != 1 {
			t.Errorf("%s played %d, want 1", r.Team, r.Played)
		}
		checkRowInvariants(t, r)
	}

	// next PlayRound draws its own fixtures
	results, err = s.PlayRound()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 10 || results[0].Round != 2 {
		t.Errorf("second round: %d results, round %d", len(results), results[0].Round)
	}
}

func TestSession_PlayFixtureOnce(t *testing.T) {
	s := newTestSession(t, VariantSportybet, 2, nil)
	f := s.GenerateFixtures().Fixtures[0]

	if _, err := s.PlayFixture(f.Home, f.Away); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlayFixture(f.Home, f.Away); !errors.Is(err, ErrFixturePlayed) {
		t.Fatalf("replay err = %v, want ErrFixturePlayed", err)
	}

	// the remaining nine are played by PlayRound, the first is not replayed
	results, err := s.PlayRound()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 9 {
		t.Errorf("PlayRound played %d, want 9", len(results))
	}
	if got := len(s.RecentResults(0)); got != 10 {
		t.Errorf("results log has %d entries, want 10", got)
	}
}

func TestSession_AdHocFixtures(t *testing.T) {
	s := newTestSession(t, VariantSportybet, 3, nil)
	for i := 0; i < 3; i++ {
		if _, err := s.PlayFixture("Arsenal", "Chelsea"); err != nil {
			t.Fatalf("ad-hoc play %d: %v", i, err)
		}
	}
	row, _ := s.table.Row("Arsenal")
	if row.Played != 3 {
		t.Errorf("Arsenal played %d, want 3", row.Played)
	}
}

func TestSession_Errors(t *testing.T) {
	s := newTestSession(t, VariantClassic, 4, nil)
	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"price unknown", func() error { _, err := s.PriceFixture("Arsenal", "Barcelona"); return err }, ErrUnknownTeam},
		{"play unknown", func() error { _, err := s.PlayFixture("Ajax", "Arsenal"); return err }, ErrUnknownTeam},
		{"predict unknown", func() error { _, err := s.PredictScore("Ajax", "Arsenal"); return err }, ErrUnknownTeam},
		{"play itself", func() error { _, err := s.PlayFixture("Leeds", "Leeds"); return err }, ErrSameTeam},
		{"bet unknown label", func() error { _, err := s.BetOnFixture("Leeds", "Wolves", "O2.5"); return err }, ErrUnknownSelection},
		{"bet unknown team", func() error { _, err := s.BetOnFixture("Leeds", "Ajax", "1"); return err }, ErrUnknownTeam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if len(s.RecentResults(0)) != 0 {
		t.Error("failed calls recorded results")
	}
	for _, r := range s.Standings() {
		if r.Played != 0 {
			t.Errorf("failed calls touched the table: %+v", r)
		}
	}
}

func TestSession_PriceFixture(t *testing.T) {
	s := newTestSession(t, VariantClassic, 5, nil)
	q, err := s.PriceFixture("Liverpool", "Brighton")
	if err != nil {
		t.Fatal(err)
	}
	// 90 vs 70 on the classic base
	if p, _ := q.Price("1"); p != 1.96 {
		t.Errorf("home price = %v, want 1.96", p)
	}
}

func TestSession_PredictScoreLeavesStateAlone(t *testing.T) {
	s := newTestSession(t, VariantClassic, 6, nil)
	res, err := s.PredictScore("Arsenal", "Leeds")
	if err != nil {
		t.Fatal(err)
	}
	if res.HomeGoals < 0 || res.AwayGoals < 0 {
		t.Errorf("predicted %s", res.ScoreLine())
	}
	if len(s.RecentResults(0)) != 0 {
		t.Error("prediction was logged")
	}
	if row, _ := s.table.Row("Arsenal"); row.Played != 0 {
		t.Error("prediction touched the table")
	}
}

func TestSession_RecentResults(t *testing.T) {
	s := newTestSession(t, VariantSportybet, 7, nil)
	for i := 0; i < 3; i++ {
		if _, err := s.PlayRound(); err != nil {
			t.Fatal(err)
		}
	}
	all := s.RecentResults(0)
	if len(all) != 30 {
		t.Fatalf("got %d results, want 30", len(all))
	}
	last := s.RecentResults(10)
	if len(last) != 10 {
		t.Fatalf("got %d recent results, want 10", len(last))
	}
	if last[9].ScoreLine() != all[29].ScoreLine() || last[9].Round != all[29].Round {
		t.Error("recent results are not the tail of the log")
	}
	if last[0].Round != 3 {
		t.Errorf("oldest of the last ten is from round %d, want 3", last[0].Round)
	}
	if got := len(s.RecentResults(500)); got != 30 {
		t.Errorf("RecentResults(500) returned %d", got)
	}
}

func TestSession_BetSlip(t *testing.T) {
	s := newTestSession(t, VariantMarkets, 8, nil)

	s.AddBet("Made up vs Fixture", "1", 2.17)
	e, err := s.BetOnFixture("Arsenal", "Leeds", "O2.5")
	if err != nil {
		t.Fatal(err)
	}
	if e.Price != 1.82 || e.Match != "Arsenal vs Leeds" {
		t.Errorf("entry = %+v", e)
	}
	if got := s.BetSlipTotal(); got != 3.95 {
		t.Errorf("total = %v, want 3.95", got)
	}
	if len(s.BetSlip()) != 2 {
		t.Errorf("slip has %d entries", len(s.BetSlip()))
	}

	s.ClearBetSlip()
	if len(s.BetSlip()) != 0 || s.BetSlipTotal() != 0 {
		t.Error("slip not cleared")
	}
}

func TestSession_SeedReproducesLeague(t *testing.T) {
	a := newTestSession(t, VariantSportybet, 99, nil)
	b := newTestSession(t, VariantSportybet, 99, nil)
	if a.ID() == b.ID() {
		t.Error("sessions share an id")
	}
	for i := 0; i < 5; i++ {
		if _, err := a.PlayRound(); err != nil {
			t.Fatal(err)
		}
		if _, err := b.PlayRound(); err != nil {
			t.Fatal(err)
		}
	}
	sa, sb := a.Standings(), b.Standings()
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, sa[i], sb[i])
		}
	}
	ta, tb := a.Roster().Teams(), b.Roster().Teams()
	for i := range ta {
		if ta[i] != tb[i] {
			t.Fatalf("resampled strengths differ: %+v vs %+v", ta[i], tb[i])
		}
	}
}

func TestSession_TitleOddsDoesNotAdvanceSession(t *testing.T) {
	a := newTestSession(t, VariantClassic, 12, nil)
	b := newTestSession(t, VariantClassic, 12, nil)

	preds := a.TitleOdds(5, 200)
	if len(preds) != 20 {
		t.Fatalf("got %d predictions", len(preds))
	}
	ra, _ := a.PlayRound()
	rb, _ := b.PlayRound()
	for i := range ra {
		if ra[i].ScoreLine() != rb[i].ScoreLine() {
			t.Fatalf("title odds changed the session's random sequence: %s vs %s", ra[i].ScoreLine(), rb[i].ScoreLine())
		}
	}
}

func TestSession_PublishesEvents(t *testing.T) {
	bus := events.NewBus()
	got := map[events.EventType]int{}
	var sessionID string
	bus.SubscribeAll(func(e events.Event) error {
		got[e.Type]++
		sessionID = e.SessionID
		return nil
	}, events.EventSessionCreated, events.EventRoundGenerated, events.EventMatchPlayed,
		events.EventBetPlaced, events.EventSlipCleared, events.EventSessionClosed)

	s := newTestSession(t, VariantClassic, 13, bus)
	s.GenerateFixtures()
	if _, err := s.PlayRound(); err != nil {
		t.Fatal(err)
	}
	s.AddBet("A vs B", "X", 3.1)
	s.ClearBetSlip()
	s.Close()

	want := map[events.EventType]int{
		events.EventSessionCreated: 1,
		events.EventRoundGenerated: 1,
		events.EventMatchPlayed:    10,
		events.EventBetPlaced:      1,
		events.EventSlipCleared:    1,
		events.EventSessionClosed:  1,
	}
	for typ, n := range want {
		if got[typ] != n {
			t.Errorf("%s published %d times, want %d", typ, got[typ], n)
		}
	}
	if sessionID != s.ID() {
		t.Errorf("events carry session %q, want %q", sessionID, s.ID())
	}
}

func TestSession_OddRosterGetsBye(t *testing.T) {
	roster, err := NewRoster([]Team{{"A", 70}, {"B", 75}, {"C", 80}})
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(Options{Roster: roster, Seed: 21}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rnd := s.GenerateFixtures()
	if len(rnd.Fixtures) != 1 || rnd.Bye == "" {
		t.Fatalf("round = %+v, want one fixture and a bye", rnd)
	}
	results, err := s.PlayRound()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("played %d, want 1", len(results))
	}
	if row, _ := s.table.Row(rnd.Bye); row.Played != 0 {
		t.Errorf("team on a bye played: %+v", row)
	}
}

func TestSession_ScheduleRoundPlaysFullSeason(t *testing.T) {
	s := newTestSession(t, VariantClassic, 11, nil)
	season := GenerateSeason(s.Roster().Names())

	for i, rnd := range season {
		got, err := s.ScheduleRound(rnd)
		if err != nil {
			t.Fatal(err)
		}
		if got.Number != i+1 || len(got.Fixtures) != len(rnd.Fixtures) {
			t.Fatalf("round %d scheduled as %+v", i+1, got)
		}
		if _, err := s.PlayRound(); err != nil {
			t.Fatal(err)
		}
	}

	n := s.Roster().Len()
	for _, row := range s.Standings() {
		if row.Played != 2*(n-1) {
			t.Errorf("%s played %d, want %d", row.Team, row.Played, 2*(n-1))
		}
	}
	if got := len(s.RecentResults(0)); got != n*(n-1) {
		t.Errorf("%d results, want %d", got, n*(n-1))
	}

	_, err := s.ScheduleRound(Round{Fixtures: []Fixture{{Home: "Arsenal", Away: "Nowhere"}}})
	if !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("unknown team: got %v", err)
	}
}

func TestSession_TopScorers(t *testing.T) {
	s := newTestSession(t, VariantMarkets, 5, nil)
	for i := 0; i < 3; i++ {
		if _, err := s.PlayRound(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.PlayFixture("Arsenal", "Chelsea"); err != nil && !errors.Is(err, ErrFixturePlayed) {
		t.Fatal(err)
	}

	all, err := s.TopScorers(0)
	if err != nil {
		t.Fatal(err)
	}
	goals := map[string]int{}
	for _, r := range s.Standings() {
		goals[r.Team] = r.GoalsFor
	}
	for i, r := range all {
		if r.Goals != goals[r.Team] {
			t.Errorf("%s: chart has %d goals, table %d", r.Team, r.Goals, goals[r.Team])
		}
		if i > 0 && r.Goals > all[i-1].Goals {
			t.Errorf("chart not sorted at %d: %+v", i, all)
		}
	}
	if top, _ := s.TopScorers(3); len(top) != 3 || top[0] != all[0] {
		t.Errorf("TopScorers(3) = %+v", top)
	}
	if !s.Info().TopScorers {
		t.Error("Info does not report the chart")
	}

	classic := newTestSession(t, VariantClassic, 5, nil)
	if _, err := classic.TopScorers(5); !errors.Is(err, ErrNotTracked) {
		t.Errorf("classic TopScorers err = %v, want ErrNotTracked", err)
	}
}

func TestSession_RedrawResetsPlayedFixtures(t *testing.T) {
	s := newTestSession(t, VariantClassic, 48, nil)
	rnd := Round{Fixtures: []Fixture{{Home: "Liverpool", Away: "Leicester"}, {Home: "Leeds", Away: "Wolves"}}}

	if _, err := s.ScheduleRound(rnd); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlayFixture("Liverpool", "Leicester"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlayFixture("Liverpool", "Leicester"); !errors.Is(err, ErrFixturePlayed) {
		t.Fatalf("replay err = %v, want ErrFixturePlayed", err)
	}

	// same pairing in a fresh list of the same round
	if _, err := s.ScheduleRound(rnd); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PlayFixture("Liverpool", "Leicester"); err != nil {
		t.Fatalf("fixture of the new list refused: %v", err)
	}
	results, err := s.PlayRound()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Home != "Leeds" {
		t.Fatalf("PlayRound played %+v, want only Leeds vs Wolves", results)
	}

	row, _ := s.table.Row("Liverpool")
	if row.Played != 2 {
		t.Errorf("Liverpool played %d, want 2 (both lists count)", row.Played)
	}

	first := s.GenerateFixtures().Fixtures[0]
	if _, err := s.PlayFixture(first.Home, first.Away); err != nil {
		t.Fatal(err)
	}
	s.GenerateFixtures()
	if got, _ := s.PlayRound(); len(got) != 10 {
		t.Errorf("PlayRound after a redraw played %d of 10", len(got))
	}
}
