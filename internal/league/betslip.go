package league

// BetSlip is an append-only list of selections with a combined price.
// There is no stake and nothing is ever settled.
type BetSlip struct {
	entries []BetSlipEntry
}

func (b *BetSlip) Add(e BetSlipEntry) {
	b.entries = append(b.entries, e)
}

// Total is the product of all prices, rounded to 2 decimals. An empty slip totals 0.
func (b *BetSlip) Total() float64 {
	if len(b.entries) == 0 {
		return 0
	}
	total := 1.0
	for _, e := range b.entries {
		total *= e.Price
	}
	return round2(total)
}

func (b *BetSlip) Clear() {
	b.entries = nil
}

func (b *BetSlip) Len() int { return len(b.entries) }

// Entries returns a copy of the slip.
func (b *BetSlip) Entries() []BetSlipEntry {
	out := make([]BetSlipEntry, len(b.entries))
	copy(out, b.entries)
	return out
}
