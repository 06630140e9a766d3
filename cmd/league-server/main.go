package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/utakatalp/virtual-football/internal/api"
	"github.com/utakatalp/virtual-football/internal/config"
	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/fanout"
	"github.com/utakatalp/virtual-football/internal/league"
	"github.com/utakatalp/virtual-football/internal/publisher"
	"github.com/utakatalp/virtual-football/internal/store"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		telemetry.Errorf("league-server: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	if opts.Roster == nil {
		opts.Roster = league.DefaultRoster()
	}
	telemetry.Infof("Starting league server variant=%s teams=%d", opts.Variant, opts.Roster.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus()

	// ── Results archive ────────────────────────────────────────
	var archive api.Archive
	if cfg.ArchiveDriver != "" {
		st, err := store.NewStore(cfg.ArchiveDriver, cfg.ArchiveDSN)
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		rec := store.NewRecorder(st, bus, cfg.EventQueueSize)
		defer rec.Close()
		archive = st
	}

	// ── Redis streams ──────────────────────────────────────────
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		pub := publisher.NewStreamPublisher(rdb, cfg.RedisStreamPrefix)
		pub.Attach(bus, cfg.EventQueueSize)
		defer pub.Close()
		telemetry.Infof("Publishing results to redis %s (%s:*)", cfg.RedisAddr, cfg.RedisStreamPrefix)
	}

	// ── Live feed & API ────────────────────────────────────────
	feed := fanout.NewServer(bus, cfg.CommentaryTick)
	defer feed.Close()

	registry := api.NewRegistry(opts, bus, cfg.SessionRatePerSec, cfg.SessionRateBurst)
	handler := api.NewHandler(registry, archive, cfg.TitleOddsRuns)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
		Handler:           api.NewRouter(handler, feed, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// ── Serve until signalled ──────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telemetry.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		telemetry.Infof("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap := telemetry.TakeSnapshot()
	telemetry.Infof("Shutdown complete  sessions=%d  matches=%d  goals=%d  bets=%d",
		snap.SessionsCreated, snap.MatchesPlayed, snap.GoalsScored, snap.BetsPlaced)
	return nil
}
