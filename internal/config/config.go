package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP API
	HTTPHost    string
	HTTPPort    int
	CORSOrigins []string

	// League defaults for new sessions
	Variant    string
	RosterPath string
	Seed       int64

	// Live feed pacing between commentary lines
	CommentaryTick time.Duration

	// Results archive: "postgres", "sqlite" or empty to disable
	ArchiveDriver string
	ArchiveDSN    string

	// Redis stream publishing, disabled when RedisAddr is empty
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisStreamPrefix string

	// Per-session limit on state-changing requests
	SessionRatePerSec float64
	SessionRateBurst  int

	TitleOddsRuns int

	// Buffer of the archive and redis workers; full queues drop events
	EventQueueSize int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPHost:    envStr("HTTP_HOST", "0.0.0.0"),
		HTTPPort:    envInt("HTTP_PORT", 8080),
		CORSOrigins: envList("CORS_ORIGINS", "http://localhost:3000"),

		Variant:    envStr("LEAGUE_VARIANT", "classic"),
		RosterPath: envStr("ROSTER_PATH", ""),
		Seed:       int64(envInt("LEAGUE_SEED", 0)),

		CommentaryTick: time.Duration(envInt("COMMENTARY_TICK_MS", 250)) * time.Millisecond,

		ArchiveDriver: envStr("ARCHIVE_DRIVER", ""),
		ArchiveDSN:    envStr("ARCHIVE_DSN", ""),

		RedisAddr:         envStr("REDIS_ADDR", ""),
		RedisPassword:     envStr("REDIS_PASSWORD", ""),
		RedisDB:           envInt("REDIS_DB", 0),
		RedisStreamPrefix: envStr("REDIS_STREAM_PREFIX", "league.results"),

		SessionRatePerSec: envFloat("SESSION_RATE_PER_SEC", 5),
		SessionRateBurst:  envInt("SESSION_RATE_BURST", 10),

		TitleOddsRuns: envInt("TITLE_ODDS_RUNS", 1000),

		EventQueueSize: envInt("EVENT_QUEUE_SIZE", 1024),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(envStr(key, fallback), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
