package events

// EventType identifies what happened in a league session.
type EventType string

const (
	EventSessionCreated EventType = "session_created"
	EventRoundGenerated EventType = "round_generated"
	EventMatchPlayed    EventType = "match_played"
	EventBetPlaced      EventType = "bet_placed"
	EventSlipCleared    EventType = "slip_cleared"
	EventSessionClosed  EventType = "session_closed"
)

// TeamEntry is a roster entry as carried on the bus.
type TeamEntry struct {
	Name     string `json:"name"`
	Strength int    `json:"strength"`
}

type SessionCreatedEvent struct {
	Variant string      `json:"variant"`
	Seed    int64       `json:"seed"`
	Teams   []TeamEntry `json:"teams"`
}

type FixtureEntry struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

type RoundGeneratedEvent struct {
	Round    int            `json:"round"`
	Fixtures []FixtureEntry `json:"fixtures"`
	Bye      string         `json:"bye,omitempty"`
}

type MatchPlayedEvent struct {
	Round      int      `json:"round"`
	Home       string   `json:"home"`
	Away       string   `json:"away"`
	HomeGoals  int      `json:"home_goals"`
	AwayGoals  int      `json:"away_goals"`
	Commentary []string `json:"commentary,omitempty"`
}

type BetPlacedEvent struct {
	Match     string  `json:"match"`
	Pick      string  `json:"pick"`
	Price     float64 `json:"price"`
	SlipTotal float64 `json:"slip_total"`
}

type SlipClearedEvent struct {
	Entries int `json:"entries"`
}

type SessionClosedEvent struct{}
