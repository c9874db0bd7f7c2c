package npc

import (
	"math"

	"piratwhist/card"
	"piratwhist/whist"
)

const (
	trumpBidWeight = 0.6
	highBidWeight  = 0.35
)

// RuleBrain is deterministic given the hand: no lookahead, no opponent modeling.
type RuleBrain struct {
	name string
}

func NewRuleBrain(name string) *RuleBrain {
	return &RuleBrain{name: name}
}

func (b *RuleBrain) Name() string { return b.name }

// Bid estimates round(0.6*trumps + 0.35*highCards), clamped to [0, cardsPer].
// Halves round to even.
func (b *RuleBrain) Bid(view GameView) int {
	trumps, high := 0, 0
	for _, c := range view.Hand {
		if c.Suit() == whist.TrumpSuit {
			trumps++
		}
		if c.Rank() >= whist.HighCardRank {
			high++
		}
	}
	est := int(math.RoundToEven(trumpBidWeight*float64(trumps) + highBidWeight*float64(high)))
	if est < 0 {
		est = 0
	}
	if est > view.CardsPer {
		est = view.CardsPer
	}
	return est
}

// Play picks the lowest lead-suit card, else the lowest trump, else the lowest
// card by suit symbol then rank.
func (b *RuleBrain) Play(view GameView) card.Card {
	if len(view.Hand) == 0 {
		return card.CardInvalid
	}
	if view.LeadSuit != card.SuitNone {
		if c, ok := lowestOfSuit(view.Hand, view.LeadSuit); ok {
			return c
		}
	}
	if c, ok := lowestOfSuit(view.Hand, whist.TrumpSuit); ok {
		return c
	}
	best := view.Hand[0]
	for _, c := range view.Hand[1:] {
		if symbolLess(c, best) {
			best = c
		}
	}
	return best
}

// symbolLess orders by suit symbol (♣ < ♥ < ♦), then rank. This differs from
// the display order of card.Less.
func symbolLess(a, b card.Card) bool {
	if sa, sb := a.Suit().String(), b.Suit().String(); sa != sb {
		return sa < sb
	}
	return a.Rank() < b.Rank()
}

func lowestOfSuit(hand card.CardList, s card.Suit) (card.Card, bool) {
	found := false
	var best card.Card
	for _, c := range hand {
		if c.Suit() != s {
			continue
		}
		if !found || c.Rank() < best.Rank() {
			best = c
			found = true
		}
	}
	return best, found
}
