package whist

import "piratwhist/card"

// compareCards returns >0 when a beats b for the given lead suit, <0 when b
// beats a, and 0 for equal strength.
func compareCards(a, b card.Card, lead card.Suit) int {
	aTrump, bTrump := a.Suit() == TrumpSuit, b.Suit() == TrumpSuit
	switch {
	case aTrump && !bTrump:
		return 1
	case bTrump && !aTrump:
		return -1
	case a.Suit() == b.Suit():
		return a.Rank() - b.Rank()
	}
	aLead, bLead := a.Suit() == lead, b.Suit() == lead
	switch {
	case aLead && !bLead:
		return 1
	case bLead && !aLead:
		return -1
	}
	return a.Rank() - b.Rank()
}

// Beats reports whether a strictly beats b.
func Beats(a, b card.Card, lead card.Suit) bool {
	return compareCards(a, b, lead) > 0
}

// TrickWinner seeds with the leader's card and walks the remaining seats in
// play order; a later card replaces the best only if strictly greater.
func TrickWinner(table []card.Card, leader int, lead card.Suit) int {
	n := len(table)
	if n == 0 || leader < 0 || leader >= n {
		return NoSeat
	}
	best := leader
	for i := 1; i < n; i++ {
		seat := (leader + i) % n
		c := table[seat]
		if c == card.CardInvalid {
			continue
		}
		if Beats(c, table[best], lead) {
			best = seat
		}
	}
	return best
}

// LegalCards lists the cards a hand may play against the current lead suit.
func LegalCards(hand card.CardList, lead card.Suit) card.CardList {
	if lead == card.SuitNone || !hand.HasSuit(lead) {
		return hand.Clone()
	}
	out := make(card.CardList, 0, len(hand))
	for _, c := range hand {
		if c.Suit() == lead {
			out = append(out, c)
		}
	}
	return out
}

func checkPlay(hand card.CardList, c card.Card, lead card.Suit) error {
	if !hand.Contains(c) {
		return ErrCardNotHeld
	}
	if lead != card.SuitNone && c.Suit() != lead && hand.HasSuit(lead) {
		return ErrMustFollowSuit
	}
	return nil
}
