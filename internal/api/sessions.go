package api

import (
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/league"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

var ErrUnknownSession = errors.New("unknown session")

type sessionEntry struct {
	session *league.Session
	limiter *rate.Limiter
}

// Registry holds the live sessions of the server. Sessions share nothing;
// the registry lock only guards the map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	base  league.Options
	bus   *events.Bus
	limit rate.Limit
	burst int
}

// NewRegistry creates sessions from base, which carries the configured
// variant, roster and seed.
func NewRegistry(base league.Options, bus *events.Bus, perSec float64, burst int) *Registry {
	limit := rate.Limit(perSec)
	if perSec <= 0 {
		limit = rate.Inf
	}
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		base:     base,
		bus:      bus,
		limit:    limit,
		burst:    burst,
	}
}

// Create starts a session. An empty variant keeps the configured one and a
// zero seed keeps the configured seed.
func (r *Registry) Create(variant string, seed int64) (*league.Session, error) {
	opts := r.base
	if variant != "" && variant != r.base.Variant {
		v, err := league.Variant(variant)
		if err != nil {
			return nil, err
		}
		v.Roster = r.base.Roster
		v.Seed = r.base.Seed
		opts = v
	}
	if seed != 0 {
		opts.Seed = seed
	}

	s, err := league.NewSession(opts, r.bus)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = &sessionEntry{session: s, limiter: rate.NewLimiter(r.limit, r.burst)}
	r.mu.Unlock()
	telemetry.Metrics.ActiveSessions.Inc()
	telemetry.Infof("api: session %s created (variant=%s)", s.ID(), opts.Variant)
	return s, nil
}

func (r *Registry) Get(id string) (*league.Session, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	return e.session, nil
}

func (r *Registry) entry(id string) (*sessionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return e, nil
}

// Allow reports whether the session may take another state-changing request.
func (r *Registry) Allow(id string) bool {
	e, err := r.entry(id)
	if err != nil {
		// unknown sessions are rejected by the handler itself
		return true
	}
	return e.limiter.Allow()
}

func (r *Registry) Exists(id string) bool {
	_, err := r.entry(id)
	return err == nil
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrUnknownSession
	}
	e.session.Close()
	telemetry.Metrics.ActiveSessions.Dec()
	telemetry.Infof("api: session %s closed", id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
