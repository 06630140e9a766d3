// Command league-sim plays a league offline and prints the table.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/utakatalp/virtual-football/internal/config"
	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/league"
	"github.com/utakatalp/virtual-football/internal/store"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

func main() {
	variant := flag.String("variant", league.VariantClassic, "league variant: "+strings.Join(league.Variants(), ", "))
	seed := flag.Int64("seed", 0, "random seed (0 = from clock)")
	rounds := flag.Int("rounds", 5, "random rounds to play")
	season := flag.Bool("season", false, "play a full double round-robin instead of random rounds")
	rosterPath := flag.String("roster", "", "YAML roster file (default: built-in clubs)")
	dbPath := flag.String("db", "", "archive results to this SQLite file")
	titleRuns := flag.Int("title", 0, "after playing, estimate title odds over this many runs")
	titleRounds := flag.Int("title-rounds", 10, "further rounds simulated per title-odds run")
	verbose := flag.Bool("v", false, "print every result and its commentary")
	logLevel := flag.String("log", "warn", "log level")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(*logLevel))

	if err := run(*variant, *seed, *rounds, *season, *rosterPath, *dbPath, *titleRuns, *titleRounds, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "league-sim: %v\n", err)
		os.Exit(1)
	}
}

func run(variant string, seed int64, rounds int, season bool, rosterPath, dbPath string, titleRuns, titleRounds int, verbose bool) error {
	opts, err := league.Variant(variant)
	if err != nil {
		return err
	}
	opts.Seed = seed
	if rosterPath != "" {
		if opts.Roster, err = config.LoadRoster(rosterPath); err != nil {
			return err
		}
	}

	bus := events.NewBus()
	if dbPath != "" {
		st, err := store.NewStore(store.DriverSQLite, dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			return err
		}
		rec := store.NewRecorder(st, bus, 0)
		defer rec.Close()
	}

	s, err := league.NewSession(opts, bus)
	if err != nil {
		return err
	}
	info := s.Info()
	fmt.Printf("Session %s  variant=%s  seed=%d  teams=%d\n\n", info.ID, info.Variant, info.Seed, len(info.Teams))

	var schedule []league.Round
	if season {
		schedule = league.GenerateSeason(s.Roster().Names())
	} else {
		schedule = make([]league.Round, rounds)
	}

	for _, planned := range schedule {
		if season {
			if _, err := s.ScheduleRound(planned); err != nil {
				return err
			}
		}
		n := s.RoundNumber()
		results, err := s.PlayRound()
		if err != nil {
			return fmt.Errorf("round %d: %w", n, err)
		}
		if verbose {
			printRound(n, results)
		}
	}

	label := fmt.Sprintf("Table after %s %s", humanize.Comma(int64(s.RoundNumber()-1)), plural(s.RoundNumber()-1, "round"))
	league.PrintTable(os.Stdout, label, s.Standings())

	if titleRuns > 0 {
		fmt.Printf("\nTitle odds (%s runs, %d more rounds)\n", humanize.Comma(int64(titleRuns)), titleRounds)
		for _, p := range s.TitleOdds(titleRounds, titleRuns) {
			if p.Probability == 0 {
				continue
			}
			fmt.Printf("  %-15s %6.2f%%\n", p.Team, p.Probability)
		}
	}
	return nil
}

func printRound(n int, results []league.MatchResult) {
	fmt.Printf("%s round\n", humanize.Ordinal(n))
	for _, r := range results {
		fmt.Printf("  %s\n", r.ScoreLine())
		for _, line := range r.Commentary {
			fmt.Printf("      %s\n", line)
		}
	}
	fmt.Println()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
