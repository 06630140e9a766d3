package telemetry

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// LatencyTracker keeps the most recent maxKeep samples.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	maxKeep int
}

func NewLatencyTracker(maxKeep int) *LatencyTracker {
	return &LatencyTracker{maxKeep: maxKeep}
}

func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.samples = append(lt.samples, d)
	if len(lt.samples) > lt.maxKeep {
		lt.samples = lt.samples[len(lt.samples)-lt.maxKeep:]
	}
}

func (lt *LatencyTracker) P50() time.Duration { return lt.percentile(0.50) }
func (lt *LatencyTracker) P99() time.Duration { return lt.percentile(0.99) }

func (lt *LatencyTracker) percentile(p float64) time.Duration {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if len(lt.samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(lt.samples))
	copy(sorted, lt.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// Metrics is the global metrics registry.
var Metrics = struct {
	SessionsCreated Counter
	RoundsGenerated Counter
	MatchesPlayed   Counter
	GoalsScored     Counter
	BetsPlaced      Counter
	ArchiveErrors   Counter
	PublishErrors   Counter
	FeedDrops       Counter
	ActiveSessions  Gauge
	FeedClients     Gauge
	RequestLatency  *LatencyTracker
}{
	RequestLatency: NewLatencyTracker(1000),
}

// Snapshot is the JSON shape served on /metrics.
type Snapshot struct {
	SessionsCreated int64  `json:"sessions_created"`
	RoundsGenerated int64  `json:"rounds_generated"`
	MatchesPlayed   int64  `json:"matches_played"`
	GoalsScored     int64  `json:"goals_scored"`
	BetsPlaced      int64  `json:"bets_placed"`
	ArchiveErrors   int64  `json:"archive_errors"`
	PublishErrors   int64  `json:"publish_errors"`
	FeedDrops       int64  `json:"feed_drops"`
	ActiveSessions  int64  `json:"active_sessions"`
	FeedClients     int64  `json:"feed_clients"`
	RequestP50      string `json:"request_p50"`
	RequestP99      string `json:"request_p99"`
}

func TakeSnapshot() Snapshot {
	return Snapshot{
		SessionsCreated: Metrics.SessionsCreated.Value(),
		RoundsGenerated: Metrics.RoundsGenerated.Value(),
		MatchesPlayed:   Metrics.MatchesPlayed.Value(),
		GoalsScored:     Metrics.GoalsScored.Value(),
		BetsPlaced:      Metrics.BetsPlaced.Value(),
		ArchiveErrors:   Metrics.ArchiveErrors.Value(),
		PublishErrors:   Metrics.PublishErrors.Value(),
		FeedDrops:       Metrics.FeedDrops.Value(),
		ActiveSessions:  Metrics.ActiveSessions.Value(),
		FeedClients:     Metrics.FeedClients.Value(),
		RequestP50:      Metrics.RequestLatency.P50().String(),
		RequestP99:      Metrics.RequestLatency.P99().String(),
	}
}
