package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/utakatalp/virtual-football/internal/league"
	"github.com/utakatalp/virtual-football/internal/store"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

const (
	defaultRecent     = 10
	defaultTitleRound = 10
	maxTitleRounds    = 100
	maxTitleRuns      = 100000
	defaultTopScorers = 10
	allRounds         = 1 << 30
)

// Archive is the results archive as seen by the API. Writes reach it
// asynchronously, so reads may trail the live session by a few events.
type Archive interface {
	GetTable(sessionID string) ([]league.StandingsRow, error)
	LoadMatches(sessionID string, uptoRound int) ([]league.MatchResult, error)
	HeadToHead(sessionID, a, b string) (store.HeadToHead, error)
	DeleteSession(sessionID string) error
}

// Handler serves the league API over a session registry.
type Handler struct {
	sessions  *Registry
	archive   Archive
	titleRuns int
}

// NewHandler creates a handler. archive may be nil.
func NewHandler(sessions *Registry, archive Archive, titleRuns int) *Handler {
	if titleRuns <= 0 {
		titleRuns = 1000
	}
	return &Handler{sessions: sessions, archive: archive, titleRuns: titleRuns}
}

type createSessionRequest struct {
	Variant string `json:"variant"`
	Seed    int64  `json:"seed"`
}

type pairingRequest struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

type betRequest struct {
	Home  string  `json:"home"`
	Away  string  `json:"away"`
	Match string  `json:"match"`
	Pick  string  `json:"pick"`
	Price float64 `json:"price"`
}

type roundResponse struct {
	Round league.Round       `json:"round"`
	Odds  []league.OddsQuote `json:"odds"`
}

type playRoundResponse struct {
	Results   []league.MatchResult `json:"results"`
	NextRound int                  `json:"next_round"`
}

type betSlipResponse struct {
	Entries []league.BetSlipEntry `json:"entries"`
	Total   float64               `json:"total"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) Metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, telemetry.TakeSnapshot())
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	s, err := h.sessions.Create(req.Variant, req.Seed)
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Info())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Info())
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeLeagueError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GenerateRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, quoteRound(s, s.GenerateFixtures()))
}

func (h *Handler) CurrentRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, quoteRound(s, s.CurrentRound()))
}

func (h *Handler) PlayRound(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	results, err := s.PlayRound()
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playRoundResponse{Results: results, NextRound: s.RoundNumber()})
}

func (h *Handler) Odds(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	q, err := s.PriceFixture(r.URL.Query().Get("home"), r.URL.Query().Get("away"))
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) PlayMatch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req pairingRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.PlayFixture(req.Home, req.Away)
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req pairingRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.PredictScore(req.Home, req.Away)
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	q, _ := s.PriceFixture(req.Home, req.Away)
	writeJSON(w, http.StatusOK, map[string]any{"prediction": res, "odds": q})
}

func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Standings())
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	n, ok := intParam(w, r, "n", defaultRecent)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.RecentResults(n))
}

func (h *Handler) BetSlip(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, betSlipResponse{Entries: s.BetSlip(), Total: s.BetSlipTotal()})
}

// AddBet prices a selection on a pairing when home and away are given,
// otherwise records match, pick and price exactly as sent.
func (h *Handler) AddBet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req betRequest
	if !decode(w, r, &req) {
		return
	}

	var entry league.BetSlipEntry
	switch {
	case req.Home != "" || req.Away != "":
		var err error
		entry, err = s.BetOnFixture(req.Home, req.Away, req.Pick)
		if err != nil {
			writeLeagueError(w, err)
			return
		}
	case req.Match != "" && req.Pick != "" && req.Price > 0:
		entry = s.AddBet(req.Match, req.Pick, req.Price)
	default:
		writeError(w, http.StatusBadRequest, "need home/away/pick or match/pick/price")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry, "total": s.BetSlipTotal()})
}

func (h *Handler) ClearBetSlip(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.ClearBetSlip()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TitleOdds(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	rounds, ok := intParam(w, r, "rounds", defaultTitleRound)
	if !ok {
		return
	}
	runs, ok := intParam(w, r, "runs", h.titleRuns)
	if !ok {
		return
	}
	if rounds < 0 || rounds > maxTitleRounds || runs < 1 || runs > maxTitleRuns {
		writeError(w, http.StatusBadRequest, "rounds must be in [0, 100] and runs in [1, 100000]")
		return
	}
	writeJSON(w, http.StatusOK, s.TitleOdds(rounds, runs))
}

func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	if !h.hasArchive(w) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	home, away := r.URL.Query().Get("home"), r.URL.Query().Get("away")
	if _, err := s.PriceFixture(home, away); err != nil {
		writeLeagueError(w, err)
		return
	}
	h2h, err := h.archive.HeadToHead(s.ID(), home, away)
	if err != nil {
		h.archiveFailed(w, s.ID(), err)
		return
	}
	writeJSON(w, http.StatusOK, h2h)
}

// ArchivedStandings serves the archived table. It works for sessions that
// were already deleted until their archive is purged.
func (h *Handler) ArchivedStandings(w http.ResponseWriter, r *http.Request) {
	if !h.hasArchive(w) {
		return
	}
	id := mux.Vars(r)["id"]
	rows, err := h.archive.GetTable(id)
	if err != nil {
		h.archiveFailed(w, id, err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "nothing archived for session "+id)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) ArchivedMatches(w http.ResponseWriter, r *http.Request) {
	if !h.hasArchive(w) {
		return
	}
	upto, ok := intParam(w, r, "upto", allRounds)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	matches, err := h.archive.LoadMatches(id, upto)
	if err != nil {
		h.archiveFailed(w, id, err)
		return
	}
	if matches == nil {
		matches = []league.MatchResult{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// PurgeArchive removes everything archived under the session id.
func (h *Handler) PurgeArchive(w http.ResponseWriter, r *http.Request) {
	if !h.hasArchive(w) {
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.archive.DeleteSession(id); err != nil {
		h.archiveFailed(w, id, err)
		return
	}
	telemetry.Infof("api: archive of session %s purged", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TopScorers(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	n, ok := intParam(w, r, "n", defaultTopScorers)
	if !ok {
		return
	}
	rows, err := s.TopScorers(n)
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) hasArchive(w http.ResponseWriter) bool {
	if h.archive == nil {
		writeError(w, http.StatusNotFound, "no results archive configured")
		return false
	}
	return true
}

func (h *Handler) archiveFailed(w http.ResponseWriter, id string, err error) {
	telemetry.Errorf("api: archive %s: %v", id, err)
	writeError(w, http.StatusInternalServerError, "archive unavailable")
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*league.Session, bool) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeLeagueError(w, err)
		return nil, false
	}
	return s, true
}

func quoteRound(s *league.Session, rnd league.Round) roundResponse {
	resp := roundResponse{Round: rnd, Odds: make([]league.OddsQuote, 0, len(rnd.Fixtures))}
	for _, f := range rnd.Fixtures {
		q, err := s.PriceFixture(f.Home, f.Away)
		if err != nil {
			continue
		}
		resp.Odds = append(resp.Odds, q)
	}
	return resp
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+raw)
		return 0, false
	}
	return n, true
}

func writeLeagueError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownSession),
		errors.Is(err, league.ErrUnknownTeam),
		errors.Is(err, league.ErrNotTracked):
		status = http.StatusNotFound
	case errors.Is(err, league.ErrSameTeam),
		errors.Is(err, league.ErrUnknownSelection),
		errors.Is(err, league.ErrUnknownVariant),
		errors.Is(err, league.ErrNegativeGoals):
		status = http.StatusBadRequest
	case errors.Is(err, league.ErrFixturePlayed):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		telemetry.Errorf("api: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("api: encode response: %v", err)
	}
}
