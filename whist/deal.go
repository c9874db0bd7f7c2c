package whist

import (
	"math/rand"
	"time"

	"piratwhist/card"
)

// CardsPer returns the hand size for a round: max(1, min(scheduled, 52/n)).
func CardsPer(roundIndex, n int) int {
	if n <= 0 {
		return 0
	}
	if roundIndex < 0 {
		roundIndex = 0
	}
	if roundIndex >= RoundCount {
		roundIndex = RoundCount - 1
	}
	per := RoundSchedule[roundIndex]
	if limit := 52 / n; per > limit {
		per = limit
	}
	if per < 1 {
		per = 1
	}
	return per
}

// Deal shuffles a fresh deck and deals cardsPer cards round-robin from seat 0.
// seq records the receiving seat of each dealt card in order.
func Deal(rng *rand.Rand, n, cardsPer int) (hands []card.CardList, seq []int) {
	deck := card.NewDeck()
	deck.Shuffle(rng)

	total := cardsPer * n
	if total > deck.Count() {
		total = deck.Count() - deck.Count()%n
	}
	hands = make([]card.CardList, n)
	for i := range hands {
		hands[i] = make(card.CardList, 0, cardsPer)
	}
	seq = make([]int, 0, total)
	dealt, _ := deck.PopCards(total)
	for i, c := range dealt {
		seat := i % n
		hands[seat].Add(c)
		seq = append(seq, seat)
	}
	for _, h := range hands {
		h.Sort()
	}
	return hands, seq
}

// DealDuration is the pacing window of the dealing phase.
func DealDuration(cardsPer, n int) time.Duration {
	d := time.Duration(cardsPer*n)*dealPerCard + dealBase
	if d < dealMinDelay {
		return dealMinDelay
	}
	if d > dealMaxDelay {
		return dealMaxDelay
	}
	return d
}
