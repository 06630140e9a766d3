package league

import "math"

const (
	// BaseClassic and BaseSportybet are the two win-probability bases in use.
	BaseClassic   = 0.45
	BaseSportybet = 0.40

	advantageWeight = 0.3
	minDrawProb     = 0.1
	minProb         = 0.05
)

// overUnderLines are fixed goal-total probabilities; they do not depend on
// team strength.
var overUnderLines = []struct {
	line        string
	over, under float64
}{
	{"1.5", 0.70, 0.30},
	{"2.5", 0.55, 0.45},
	{"3.5", 0.35, 0.65},
}

// Pricer turns two strength ratings into decimal odds. Implied probabilities
// are not normalized, so the book carries an uneven margin.
type Pricer struct {
	Base      float64
	OverUnder bool
}

// Probabilities returns the raw home, draw and away probabilities.
func (p Pricer) Probabilities(home, away Team) (pHome, pDraw, pAway float64) {
	advantage := float64(home.Strength-away.Strength) / 100.0
	pHome = p.Base + advantage*advantageWeight
	pAway = p.Base - advantage*advantageWeight
	pDraw = math.Max(minDrawProb, 1-pHome-pAway)
	return
}

// Price quotes 1X2 and, when enabled, the over/under markets.
func (p Pricer) Price(home, away Team) OddsQuote {
	pHome, pDraw, pAway := p.Probabilities(home, away)
	q := OddsQuote{
		Home: home.Name,
		Away: away.Name,
		Prices: []Price{
			{"1", DecimalOdds(pHome)},
			{"X", DecimalOdds(pDraw)},
			{"2", DecimalOdds(pAway)},
		},
	}
	if p.OverUnder {
		for _, l := range overUnderLines {
			q.Prices = append(q.Prices,
				Price{"O" + l.line, DecimalOdds(l.over)},
				Price{"U" + l.line, DecimalOdds(l.under)},
			)
		}
	}
	return q
}

// DecimalOdds inverts a probability, floored at 5%, to a two-decimal price.
func DecimalOdds(prob float64) float64 {
	return round2(1 / math.Max(minProb, prob))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
