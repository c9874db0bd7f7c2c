package whist

import (
	"math/rand"
	"testing"
	"time"

	"piratwhist/card"
)

func TestCardsPer_FollowsScheduleAndDeckLimit(t *testing.T) {
	for n := MinSeats; n <= MaxSeats; n++ {
		for r := 0; r < RoundCount; r++ {
			want := RoundSchedule[r]
			if limit := 52 / n; want > limit {
				want = limit
			}
			if want < 1 {
				want = 1
			}
			if got := CardsPer(r, n); got != want {
				t.Fatalf("CardsPer(%d, %d) = %d, want %d", r, n, got, want)
			}
		}
	}
	if got := CardsPer(0, 8); got != 6 {
		t.Fatalf("expected 6 cards for 8 seats in round 1, got %d", got)
	}
}

func TestDeal_IsPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := MinSeats; n <= MaxSeats; n++ {
		per := CardsPer(0, n)
		hands, seq := Deal(rng, n, per)
		if len(seq) != per*n {
			t.Fatalf("n=%d: expected %d deal steps, got %d", n, per*n, len(seq))
		}
		seen := make(map[card.Card]int)
		total := 0
		for seat, h := range hands {
			if h.Count() != per {
				t.Fatalf("n=%d seat=%d: expected %d cards, got %d", n, seat, per, h.Count())
			}
			for i, c := range h {
				if prev, dup := seen[c]; dup {
					t.Fatalf("card %v dealt to seat %d and %d", c, prev, seat)
				}
				seen[c] = seat
				if i > 0 && h[i].Less(h[i-1]) {
					t.Fatalf("hand not sorted: %v", h)
				}
			}
			total += h.Count()
		}
		if total != per*n {
			t.Fatalf("n=%d: total dealt %d, want %d", n, total, per*n)
		}
		for i, seat := range seq {
			if seat != i%n {
				t.Fatalf("deal sequence step %d went to seat %d", i, seat)
			}
		}
	}
}

func TestDealDuration_Bounded(t *testing.T) {
	if d := DealDuration(1, 1); d != 800*time.Millisecond {
		t.Fatalf("expected lower bound, got %v", d)
	}
	if d := DealDuration(7, 4); d != 28*120*time.Millisecond+600*time.Millisecond {
		t.Fatalf("unexpected duration for 28 cards: %v", d)
	}
	if d := DealDuration(6, 8); d > 8*time.Second {
		t.Fatalf("duration above cap: %v", d)
	}
}
