package league

import (
	"fmt"
	"sort"
)

// Options configures a session. The named variants are presets over it.
type Options struct {
	Variant string

	// OddsBase is the win-probability base before the strength adjustment.
	OddsBase  float64
	OverUnder bool

	// Commentary attaches a minute-by-minute feed to each played match.
	Commentary bool
	// TopScorers keeps a goals-per-team chart alongside the table.
	TopScorers bool

	// RandomizeStrengths re-samples every team's strength in
	// [StrengthMin, StrengthMax] when the session starts.
	RandomizeStrengths bool
	StrengthMin        int
	StrengthMax        int

	// Roster overrides the default clubs.
	Roster *Roster
	// Seed drives every random draw of the session; 0 picks one from the clock.
	Seed int64
}

const (
	VariantClassic   = "classic"
	VariantSportybet = "sportybet"
	VariantMarkets   = "markets"

	defaultStrengthMin = 60
	defaultStrengthMax = 95
)

var variants = map[string]Options{
	VariantClassic: {
		Variant:    VariantClassic,
		OddsBase:   BaseClassic,
		Commentary: true,
	},
	VariantSportybet: {
		Variant:            VariantSportybet,
		OddsBase:           BaseSportybet,
		RandomizeStrengths: true,
	},
	VariantMarkets: {
		Variant:            VariantMarkets,
		OddsBase:           BaseSportybet,
		OverUnder:          true,
		TopScorers:         true,
		RandomizeStrengths: true,
	},
}

// Variant returns the preset options for name.
func Variant(name string) (Options, error) {
	o, ok := variants[name]
	if !ok {
		return Options{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownVariant, name, Variants())
	}
	o.StrengthMin = defaultStrengthMin
	o.StrengthMax = defaultStrengthMax
	return o, nil
}

// Variants lists preset names.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (o Options) withDefaults() Options {
	if o.OddsBase == 0 {
		o.OddsBase = BaseClassic
	}
	if o.StrengthMin == 0 {
		o.StrengthMin = defaultStrengthMin
	}
	if o.StrengthMax == 0 {
		o.StrengthMax = defaultStrengthMax
	}
	if o.Roster == nil {
		o.Roster = DefaultRoster()
	}
	return o
}
