package league

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

// Session owns one league: roster, table, the current round, the results
// log and the bet slip. Every operation holds the session lock for its whole
// duration, so calls never interleave. A round that fails half way keeps the
// results already applied.
type Session struct {
	mu sync.Mutex

	id      string
	opts    Options
	seed    int64
	created time.Time

	roster  *Roster
	table   *Table
	scorers *ScorerTally
	rng     *rand.Rand
	sim     *Simulator
	pricer  Pricer

	round   int
	current Round
	played  map[uint64]bool
	results []MatchResult
	slip    BetSlip

	bus *events.Bus
	now func() time.Time
}

// Info is a read-only summary of a session.
type Info struct {
	ID         string    `json:"id"`
	Variant    string    `json:"variant"`
	Seed       int64     `json:"seed"`
	Round      int       `json:"round"`
	OddsBase   float64   `json:"odds_base"`
	OverUnder  bool      `json:"over_under"`
	Commentary bool      `json:"commentary"`
	TopScorers bool      `json:"top_scorers"`
	Teams      []Team    `json:"teams"`
	Played     int       `json:"matches_played"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSession starts a league. bus may be nil.
func NewSession(opts Options, bus *events.Bus) (*Session, error) {
	opts = opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	roster := opts.Roster
	if opts.RandomizeStrengths {
		roster = roster.Resample(rng, opts.StrengthMin, opts.StrengthMax)
	}

	s := &Session{
		id:      uuid.NewString(),
		opts:    opts,
		seed:    seed,
		created: time.Now(),
		roster:  roster,
		table:   NewTable(roster.Names()),
		rng:     rng,
		sim:     NewSimulator(rng),
		pricer:  Pricer{Base: opts.OddsBase, OverUnder: opts.OverUnder},
		round:   1,
		played:  make(map[uint64]bool),
		bus:     bus,
		now:     time.Now,
	}
	if opts.TopScorers {
		s.scorers = NewScorerTally(roster.Names())
	}

	teams := make([]events.TeamEntry, 0, roster.Len())
	for _, t := range roster.Teams() {
		teams = append(teams, events.TeamEntry{Name: t.Name, Strength: t.Strength})
	}
	s.publish(events.EventSessionCreated, events.SessionCreatedEvent{
		Variant: opts.Variant,
		Seed:    seed,
		Teams:   teams,
	})
	telemetry.Metrics.SessionsCreated.Inc()
	telemetry.Debugf("league: session %s started variant=%q seed=%d teams=%d", s.id, opts.Variant, seed, roster.Len())
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:         s.id,
		Variant:    s.opts.Variant,
		Seed:       s.seed,
		Round:      s.round,
		OddsBase:   s.opts.OddsBase,
		OverUnder:  s.opts.OverUnder,
		Commentary: s.opts.Commentary,
		TopScorers: s.opts.TopScorers,
		Teams:      s.roster.Teams(),
		Played:     len(s.results),
		CreatedAt:  s.created,
	}
}

// Roster returns the session's teams with their strengths.
func (s *Session) Roster() *Roster {
	return s.roster
}

// GenerateFixtures draws a new fixture list for the current round number,
// replacing any list drawn before. Every fixture of the new list can be
// played, even a pairing already played from the old one. Standings are
// not touched.
func (s *Session) GenerateFixtures() Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateLocked()
}

func (s *Session) generateLocked() Round {
	return s.installLocked(GenerateFixtures(s.roster.Names(), s.round, s.rng))
}

// ScheduleRound installs a prepared fixture list, such as one round of
// GenerateSeason, as the current round. Fixtures are renumbered to the
// session's round and every team must be registered.
func (s *Session) ScheduleRound(r Round) (Round, error) {
	for _, f := range r.Fixtures {
		if _, _, err := s.pair(f.Home, f.Away); err != nil {
			return Round{}, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r = copyRound(r)
	r.Number = s.round
	for i := range r.Fixtures {
		r.Fixtures[i].Round = s.round
	}
	return s.installLocked(r), nil
}

// installLocked replaces the current list. Played marks only ever refer to
// the current list, so a redraw clears them; results already played stay
// in the table.
func (s *Session) installLocked(r Round) Round {
	s.current = r
	clear(s.played)

	fixtures := make([]events.FixtureEntry, len(s.current.Fixtures))
	for i, f := range s.current.Fixtures {
		fixtures[i] = events.FixtureEntry{Home: f.Home, Away: f.Away}
	}
	s.publish(events.EventRoundGenerated, events.RoundGeneratedEvent{
		Round:    s.current.Number,
		Fixtures: fixtures,
		Bye:      s.current.Bye,
	})
	telemetry.Metrics.RoundsGenerated.Inc()
	return copyRound(s.current)
}

// CurrentRound returns the most recently generated fixture list.
func (s *Session) CurrentRound() Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRound(s.current)
}

// RoundNumber is the round that the next played fixtures count towards.
func (s *Session) RoundNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

// PriceFixture quotes odds for a pairing of registered teams.
func (s *Session) PriceFixture(home, away string) (OddsQuote, error) {
	h, a, err := s.pair(home, away)
	if err != nil {
		return OddsQuote{}, err
	}
	return s.pricer.Price(h, a), nil
}

// PlayFixture simulates the pairing and folds the score into the table.
// A fixture of the current round can be played once; pairings outside the
// round are accepted every time.
func (s *Session) PlayFixture(home, away string) (MatchResult, error) {
	h, a, err := s.pair(home, away)
	if err != nil {
		return MatchResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := Fixture{Round: s.round, Home: home, Away: away}
	scheduled := s.scheduledLocked(f)
	if scheduled && s.played[f.ID()] {
		return MatchResult{}, fmt.Errorf("%w: %s (round %d)", ErrFixturePlayed, f, f.Round)
	}
	res, err := s.playLocked(f, h, a)
	if err != nil {
		return MatchResult{}, err
	}
	if scheduled {
		s.played[f.ID()] = true
	}
	return res, nil
}

// PlayRound plays every unplayed fixture of the current round and moves on
// to the next round. Fixtures are drawn first if the round has none yet.
func (s *Session) PlayRound() ([]MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Number != s.round || len(s.current.Fixtures) == 0 {
		s.generateLocked()
	}

	results := make([]MatchResult, 0, len(s.current.Fixtures))
	for _, f := range s.current.Fixtures {
		if s.played[f.ID()] {
			continue
		}
		h, err := s.roster.Lookup(f.Home)
		if err != nil {
			return results, err
		}
		a, err := s.roster.Lookup(f.Away)
		if err != nil {
			return results, err
		}
		res, err := s.playLocked(f, h, a)
		if err != nil {
			return results, err
		}
		s.played[f.ID()] = true
		results = append(results, res)
	}
	telemetry.Debugf("league: session %s round %d complete (%d matches)", s.id, s.round, len(results))
	s.round++
	return results, nil
}

// PredictScore simulates a pairing without recording it anywhere.
func (s *Session) PredictScore(home, away string) (MatchResult, error) {
	h, a, err := s.pair(home, away)
	if err != nil {
		return MatchResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	hg, ag := s.sim.Simulate(h, a)
	return MatchResult{Round: s.round, Home: home, Away: away, HomeGoals: hg, AwayGoals: ag}, nil
}

func (s *Session) playLocked(f Fixture, h, a Team) (MatchResult, error) {
	hg, ag := s.sim.Simulate(h, a)
	res := MatchResult{Round: f.Round, Home: f.Home, Away: f.Away, HomeGoals: hg, AwayGoals: ag}
	if s.opts.Commentary {
		res.Commentary = Commentary(s.rng, f.Home, f.Away, hg, ag)
	}
	if err := s.table.ApplyResult(f.Home, f.Away, hg, ag); err != nil {
		return MatchResult{}, err
	}
	if s.scorers != nil {
		s.scorers.Record(f.Home, f.Away, hg, ag)
	}
	s.results = append(s.results, res)

	s.publish(events.EventMatchPlayed, events.MatchPlayedEvent{
		Round:      res.Round,
		Home:       res.Home,
		Away:       res.Away,
		HomeGoals:  res.HomeGoals,
		AwayGoals:  res.AwayGoals,
		Commentary: res.Commentary,
	})
	telemetry.Metrics.MatchesPlayed.Inc()
	telemetry.Metrics.GoalsScored.Add(int64(hg + ag))
	return res, nil
}

func (s *Session) scheduledLocked(f Fixture) bool {
	if s.current.Number != f.Round {
		return false
	}
	for _, c := range s.current.Fixtures {
		if c.Home == f.Home && c.Away == f.Away {
			return true
		}
	}
	return false
}

// Standings returns the ranked table.
func (s *Session) Standings() []StandingsRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Rank()
}

// TopScorers returns the n best scoring teams; n <= 0 returns all of them.
// Sessions without the chart fail with ErrNotTracked.
func (s *Session) TopScorers(n int) ([]ScorerRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scorers == nil {
		return nil, fmt.Errorf("top scorers: %w", ErrNotTracked)
	}
	return s.scorers.Leaders(n), nil
}

// RecentResults returns the last n results, oldest first. n <= 0 returns all.
func (s *Session) RecentResults(n int) []MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && n < len(s.results) {
		start = len(s.results) - n
	}
	out := make([]MatchResult, len(s.results)-start)
	copy(out, s.results[start:])
	return out
}

// AddBet appends a selection as given; nothing about it is checked.
func (s *Session) AddBet(match, pick string, price float64) BetSlipEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBetLocked(match, pick, price)
}

// BetOnFixture adds a selection at the pairing's current price.
func (s *Session) BetOnFixture(home, away, pick string) (BetSlipEntry, error) {
	q, err := s.PriceFixture(home, away)
	if err != nil {
		return BetSlipEntry{}, err
	}
	price, ok := q.Price(pick)
	if !ok {
		return BetSlipEntry{}, fmt.Errorf("%w: %q on %s vs %s", ErrUnknownSelection, pick, home, away)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBetLocked(Fixture{Home: home, Away: away}.String(), pick, price), nil
}

func (s *Session) addBetLocked(match, pick string, price float64) BetSlipEntry {
	e := BetSlipEntry{Match: match, Pick: pick, Price: price, PlacedAt: s.now()}
	s.slip.Add(e)
	s.publish(events.EventBetPlaced, events.BetPlacedEvent{
		Match:     match,
		Pick:      pick,
		Price:     price,
		SlipTotal: s.slip.Total(),
	})
	telemetry.Metrics.BetsPlaced.Inc()
	return e
}

func (s *Session) BetSlip() []BetSlipEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slip.Entries()
}

func (s *Session) BetSlipTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slip.Total()
}

func (s *Session) ClearBetSlip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.slip.Len()
	s.slip.Clear()
	s.publish(events.EventSlipCleared, events.SlipClearedEvent{Entries: n})
}

// TitleOdds runs a Monte Carlo of further rounds from the current table.
// It draws from its own source so the session's sequence is left alone.
func (s *Session) TitleOdds(rounds, runs int) []Prediction {
	s.mu.Lock()
	table := s.table.Clone()
	src := rand.NewSource(s.seed ^ int64(s.round)<<32 ^ int64(len(s.results)))
	s.mu.Unlock()
	return TitleOdds(s.roster, table, rounds, runs, rand.New(src))
}

// Close announces that the session is gone.
func (s *Session) Close() {
	s.publish(events.EventSessionClosed, events.SessionClosedEvent{})
}

func (s *Session) pair(home, away string) (Team, Team, error) {
	h, err := s.roster.Lookup(home)
	if err != nil {
		return Team{}, Team{}, err
	}
	a, err := s.roster.Lookup(away)
	if err != nil {
		return Team{}, Team{}, err
	}
	if home == away {
		return Team{}, Team{}, fmt.Errorf("%w: %q", ErrSameTeam, home)
	}
	return h, a, nil
}

func (s *Session) publish(t events.EventType, payload any) {
	s.bus.Publish(events.New(t, s.id, payload))
}

func copyRound(r Round) Round {
	out := r
	out.Fixtures = make([]Fixture, len(r.Fixtures))
	copy(out.Fixtures, r.Fixtures)
	return out
}
