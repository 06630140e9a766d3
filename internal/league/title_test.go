package league

import (
	"math"
	"math/rand"
	"testing"
)

func TestTitleOdds(t *testing.T) {
	roster, err := NewRoster([]Team{{"Giants", 95}, {"Middling", 70}, {"Minnows", 20}, {"Strugglers", 20}})
	if err != nil {
		t.Fatal(err)
	}
	table := NewTable(roster.Names())
	preds := TitleOdds(roster, table, 6, 2000, rand.New(rand.NewSource(17)))

	if len(preds) != 4 {
		t.Fatalf("got %d predictions, want 4", len(preds))
	}
	var sum float64
	for i, p := range preds {
		sum += p.Probability
		if i > 0 && preds[i-1].Probability < p.Probability {
			t.Errorf("predictions not sorted: %+v", preds)
		}
	}
	if math.Abs(sum-100) > 0.5 {
		t.Errorf("probabilities sum to %v, want 100", sum)
	}
	if preds[0].Team != "Giants" {
		t.Errorf("favourite = %s, want Giants", preds[0].Team)
	}
	for _, r := range table.Rank() {
		if r.Played != 0 {
			t.Errorf("TitleOdds mutated the table: %+v", r)
		}
	}
}

func TestTitleOdds_NoRoundsLeft(t *testing.T) {
	roster, _ := NewRoster([]Team{{"A", 70}, {"B", 70}})
	table := NewTable(roster.Names())
	_ = table.ApplyResult("B", "A", 1, 0)

	preds := TitleOdds(roster, table, 0, 10, rand.New(rand.NewSource(1)))
	if preds[0].Team != "B" || preds[0].Probability != 100 {
		t.Errorf("with no rounds left the leader should be certain: %+v", preds)
	}
}
