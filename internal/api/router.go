package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/utakatalp/virtual-football/internal/fanout"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

// NewRouter wires every route. feed may be nil to disable the live feed.
func NewRouter(h *Handler, feed *fanout.Server, origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, requestLog)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.Metrics).Methods(http.MethodGet)
	if feed != nil {
		feed.Exists = h.sessions.Exists
		r.HandleFunc("/ws", feed.HandleWS).Methods(http.MethodGet)
	}

	r.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)

	s := r.PathPrefix("/sessions/{id}").Subrouter()
	s.Use(h.rateLimit)
	s.HandleFunc("", h.GetSession).Methods(http.MethodGet)
	s.HandleFunc("", h.DeleteSession).Methods(http.MethodDelete)
	s.HandleFunc("/rounds", h.GenerateRound).Methods(http.MethodPost)
	s.HandleFunc("/rounds/current", h.CurrentRound).Methods(http.MethodGet)
	s.HandleFunc("/rounds/current/play", h.PlayRound).Methods(http.MethodPost)
	s.HandleFunc("/odds", h.Odds).Methods(http.MethodGet)
	s.HandleFunc("/matches", h.PlayMatch).Methods(http.MethodPost)
	s.HandleFunc("/predictions", h.Predict).Methods(http.MethodPost)
	s.HandleFunc("/standings", h.Standings).Methods(http.MethodGet)
	s.HandleFunc("/results", h.Results).Methods(http.MethodGet)
	s.HandleFunc("/betslip", h.BetSlip).Methods(http.MethodGet)
	s.HandleFunc("/betslip", h.AddBet).Methods(http.MethodPost)
	s.HandleFunc("/betslip", h.ClearBetSlip).Methods(http.MethodDelete)
	s.HandleFunc("/top-scorers", h.TopScorers).Methods(http.MethodGet)
	s.Handle("/title-odds", h.limited(http.HandlerFunc(h.TitleOdds))).Methods(http.MethodGet)
	s.HandleFunc("/archive/h2h", h.HeadToHead).Methods(http.MethodGet)
	s.HandleFunc("/archive/standings", h.ArchivedStandings).Methods(http.MethodGet)
	s.HandleFunc("/archive/matches", h.ArchivedMatches).Methods(http.MethodGet)
	s.HandleFunc("/archive", h.PurgeArchive).Methods(http.MethodDelete)

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(r)
}

// rateLimit applies the session's limiter to state-changing requests.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	limited := h.limited(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// limited charges every request to the session's limiter. Used directly
// for reads that cost as much as a write, such as title odds.
func (h *Handler) limited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.sessions.Allow(mux.Vars(r)["id"]) {
			writeError(w, http.StatusTooManyRequests, "slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)
		telemetry.Metrics.RequestLatency.Record(elapsed)
		telemetry.Debugf("api: %s %s %d %s req=%s",
			r.Method, r.URL.Path, ww.Status(), elapsed, middleware.GetReqID(r.Context()))
	})
}
