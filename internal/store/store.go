package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/utakatalp/virtual-football/internal/league"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store wraps a database connection and archives league sessions, their
// teams and every played match. Queries are written with $N placeholders
// and rewritten to ?N for SQLite.
type Store struct {
	DB     *sql.DB
	driver string
}

// NewStore opens and pings an archive database. driver is "postgres" or "sqlite".
func NewStore(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create archive dir: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	// verify early
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	telemetry.Infof("store: connected to %s archive", driver)
	return &Store{DB: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) q(query string) string {
	if s.driver == DriverSQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate() error {
	serial := "SERIAL PRIMARY KEY"
	if s.driver == DriverSQLite {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
		    id         TEXT PRIMARY KEY,
		    variant    TEXT    NOT NULL,
		    seed       BIGINT  NOT NULL,
		    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS teams (
		    session_id    TEXT    NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		    name          TEXT    NOT NULL,
		    strength      INT     NOT NULL,
		    played        INT     NOT NULL DEFAULT 0,
		    points        INT     NOT NULL DEFAULT 0,
		    win           INT     NOT NULL DEFAULT 0,
		    draw          INT     NOT NULL DEFAULT 0,
		    lose          INT     NOT NULL DEFAULT 0,
		    goals_for     INT     NOT NULL DEFAULT 0,
		    goals_against INT     NOT NULL DEFAULT 0,
		    PRIMARY KEY (session_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
		    id ` + serial + `,
		    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		    round      INT  NOT NULL,
		    home_team  TEXT NOT NULL,
		    away_team  TEXT NOT NULL,
		    home_goals INT  NOT NULL,
		    away_goals INT  NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_session ON matches(session_id, round);`,
	}
	for _, q := range queries {
		if _, err := s.DB.Exec(q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateSession(id, variant string, seed int64) error {
	query := s.q(`
    INSERT INTO sessions (id, variant, seed)
    VALUES ($1, $2, $3)
    ON CONFLICT (id) DO NOTHING
    `)
	if _, err := s.DB.Exec(query, id, variant, seed); err != nil {
		return fmt.Errorf("inserting session %s: %w", id, err)
	}
	return nil
}

func (s *Store) InsertTeams(sessionID string, teams []league.Team) error {
	query := s.q(`
    INSERT INTO teams (session_id, name, strength)
    VALUES ($1, $2, $3)
    ON CONFLICT (session_id, name) DO NOTHING
    `)
	for _, t := range teams {
		if _, err := s.DB.Exec(query, sessionID, t.Name, t.Strength); err != nil {
			return fmt.Errorf("inserting team %s: %w", t.Name, err)
		}
	}
	return nil
}

// UpdateTeams folds one result into both archived rows in a single transaction.
func (s *Store) UpdateTeams(sessionID string, match league.MatchResult) error {
	// 1) Compute increments
	homePts, homeW, homeD, homeL := 0, 0, 0, 0
	awayPts, awayW, awayD, awayL := 0, 0, 0, 0

	switch {
	case match.HomeGoals > match.AwayGoals:
		homePts, homeW = 3, 1
		awayL = 1

	case match.AwayGoals > match.HomeGoals:
		awayPts, awayW = 3, 1
		homeL = 1

	default: // draw
		homePts, homeD = 1, 1
		awayPts, awayD = 1, 1
	}

	// 2) Begin a transaction
	tx, err := s.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin UpdateTeams tx: %w", err)
	}
	defer tx.Rollback()

	// 3) Prepare the UPDATE statement
	q := s.q(`
      UPDATE teams
      SET
        played       = played       + 1,
        points       = points       + $1,
        win          = win          + $2,
        draw         = draw         + $3,
        lose         = lose         + $4,
        goals_for    = goals_for    + $5,
        goals_against= goals_against+ $6
      WHERE session_id = $7 AND name = $8
    `)

	// 4) Update home team
	if _, err := tx.Exec(
		q,
		homePts, homeW, homeD, homeL,
		match.HomeGoals, match.AwayGoals,
		sessionID, match.Home,
	); err != nil {
		return fmt.Errorf("updating home team %s: %w", match.Home, err)
	}

	// 5) Update away team
	if _, err := tx.Exec(
		q,
		awayPts, awayW, awayD, awayL,
		match.AwayGoals, match.HomeGoals,
		sessionID, match.Away,
	); err != nil {
		return fmt.Errorf("updating away team %s: %w", match.Away, err)
	}

	// 6) Commit
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit UpdateTeams tx: %w", err)
	}
	return nil
}

// GetTable returns the archived standings of a session.
func (s *Store) GetTable(sessionID string) ([]league.StandingsRow, error) {
	q := s.q(`
    SELECT
      name,
      played,
      win,
      draw,
      lose,
      goals_for,
      goals_against,
      points
    FROM teams
    WHERE session_id = $1
    ORDER BY
      points          DESC,
      (goals_for - goals_against) DESC,
      goals_for       DESC,
      name            ASC
    `)
	rows, err := s.DB.Query(q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying table: %w", err)
	}
	defer rows.Close()

	var table []league.StandingsRow
	for rows.Next() {
		var r league.StandingsRow
		if err := rows.Scan(
			&r.Team,
			&r.Played,
			&r.Won,
			&r.Drawn,
			&r.Lost,
			&r.GoalsFor,
			&r.GoalsAgainst,
			&r.Points,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		table = append(table, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return table, nil
}

// SaveMatch persists a played match and returns its archive id.
func (s *Store) SaveMatch(sessionID string, m league.MatchResult) (int64, error) {
	query := s.q(`
INSERT INTO matches (session_id, round, home_team, away_team, home_goals, away_goals)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`)
	var id int64
	err := s.DB.QueryRow(query, sessionID, m.Round, m.Home, m.Away, m.HomeGoals, m.AwayGoals).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving match: %w", err)
	}
	return id, nil
}

// LoadMatches fetches all played matches up to the specified round.
func (s *Store) LoadMatches(sessionID string, uptoRound int) ([]league.MatchResult, error) {
	query := s.q(`
SELECT round, home_team, away_team, home_goals, away_goals
FROM matches
WHERE session_id = $1 AND round <= $2
ORDER BY round, id;
`)
	rows, err := s.DB.Query(query, sessionID, uptoRound)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []league.MatchResult
	for rows.Next() {
		var m league.MatchResult
		if err := rows.Scan(&m.Round, &m.Home, &m.Away, &m.HomeGoals, &m.AwayGoals); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// HeadToHead is the archived record between two teams, from a's side.
type HeadToHead struct {
	TeamA  string `json:"team_a"`
	TeamB  string `json:"team_b"`
	Played int    `json:"played"`
	WinsA  int    `json:"wins_a"`
	WinsB  int    `json:"wins_b"`
	Draws  int    `json:"draws"`
	GoalsA int    `json:"goals_a"`
	GoalsB int    `json:"goals_b"`
}

// HeadToHead counts every archived meeting of a and b, home or away.
func (s *Store) HeadToHead(sessionID, a, b string) (HeadToHead, error) {
	query := s.q(`
	SELECT home_team, home_goals, away_goals
	FROM matches
	WHERE session_id = $1
	  AND ((home_team = $2 AND away_team = $3) OR (home_team = $3 AND away_team = $2))
	`)
	rows, err := s.DB.Query(query, sessionID, a, b)
	if err != nil {
		return HeadToHead{}, fmt.Errorf("querying head to head: %w", err)
	}
	defer rows.Close()

	h2h := HeadToHead{TeamA: a, TeamB: b}
	for rows.Next() {
		var home string
		var homeGoals, awayGoals int
		if err := rows.Scan(&home, &homeGoals, &awayGoals); err != nil {
			return HeadToHead{}, fmt.Errorf("scanning head to head: %w", err)
		}
		goalsA, goalsB := homeGoals, awayGoals
		if home != a {
			goalsA, goalsB = awayGoals, homeGoals
		}
		h2h.Played++
		h2h.GoalsA += goalsA
		h2h.GoalsB += goalsB
		switch {
		case goalsA > goalsB:
			h2h.WinsA++
		case goalsB > goalsA:
			h2h.WinsB++
		default:
			h2h.Draws++
		}
	}
	return h2h, rows.Err()
}

// DeleteSession removes a session and everything archived under it.
func (s *Store) DeleteSession(sessionID string) error {
	for _, q := range []string{
		`DELETE FROM matches WHERE session_id = $1;`,
		`DELETE FROM teams WHERE session_id = $1;`,
		`DELETE FROM sessions WHERE id = $1;`,
	} {
		if _, err := s.DB.Exec(s.q(q), sessionID); err != nil {
			return fmt.Errorf("deleting session %s: %w", sessionID, err)
		}
	}
	return nil
}
