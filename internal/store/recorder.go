package store

import (
	"fmt"

	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/league"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

// Recorder archives session activity from the bus. Writes run on their own
// goroutine in publish order, so a slow database never holds a session.
// Failures and dropped events are logged and counted; they never fail the
// league operation that caused them.
type Recorder struct {
	store  *Store
	worker *events.Worker
}

// NewRecorder subscribes to the bus. queue <= 0 uses events.DefaultQueueSize.
func NewRecorder(s *Store, bus *events.Bus, queue int) *Recorder {
	r := &Recorder{store: s}
	r.worker = events.NewWorker("archive", queue, r.track(r.record), telemetry.Metrics.ArchiveErrors.Inc)
	bus.SubscribeAll(r.worker.Handle, events.EventSessionCreated, events.EventMatchPlayed)
	return r
}

// Close flushes queued writes. Events published afterwards are dropped.
func (r *Recorder) Close() {
	r.worker.Close()
}

func (r *Recorder) record(e events.Event) error {
	switch e.Type {
	case events.EventSessionCreated:
		return r.onSessionCreated(e)
	case events.EventMatchPlayed:
		return r.onMatchPlayed(e)
	}
	return nil
}

func (r *Recorder) track(h events.Handler) events.Handler {
	return func(e events.Event) error {
		if err := h(e); err != nil {
			telemetry.Metrics.ArchiveErrors.Inc()
			return fmt.Errorf("archive: %w", err)
		}
		return nil
	}
}

func (r *Recorder) onSessionCreated(e events.Event) error {
	p, ok := e.Payload.(events.SessionCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	if err := r.store.CreateSession(e.SessionID, p.Variant, p.Seed); err != nil {
		return err
	}
	teams := make([]league.Team, len(p.Teams))
	for i, t := range p.Teams {
		teams[i] = league.Team{Name: t.Name, Strength: t.Strength}
	}
	return r.store.InsertTeams(e.SessionID, teams)
}

func (r *Recorder) onMatchPlayed(e events.Event) error {
	p, ok := e.Payload.(events.MatchPlayedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	m := league.MatchResult{
		Round:     p.Round,
		Home:      p.Home,
		Away:      p.Away,
		HomeGoals: p.HomeGoals,
		AwayGoals: p.AwayGoals,
	}
	if _, err := r.store.SaveMatch(e.SessionID, m); err != nil {
		return err
	}
	return r.store.UpdateTeams(e.SessionID, m)
}
