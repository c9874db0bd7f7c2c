package whist

import (
	"errors"
	"testing"

	"piratwhist/card"
)

func TestTrickWinner_TrumpBeatsLeadSuit(t *testing.T) {
	table := []card.Card{card.CardHeart7, card.CardSpade2, card.CardHeartQ, card.CardHeart5}
	if w := TrickWinner(table, 0, card.Heart); w != 1 {
		t.Fatalf("expected lone trump at seat 1 to win, got %d", w)
	}
}

func TestTrickWinner_HighestLeadSuitWithoutTrump(t *testing.T) {
	table := []card.Card{card.CardDiamondA, card.CardClub9, card.CardClubK, card.CardClub3}
	// seat 1 led clubs; the diamond ace is off-suit and cannot win
	if w := TrickWinner(table, 1, card.Club); w != 2 {
		t.Fatalf("expected seat 2 (K♣) to win, got %d", w)
	}
}

func TestTrickWinner_HigherTrumpWins(t *testing.T) {
	table := []card.Card{card.CardHeartA, card.CardSpade3, card.CardSpadeJ}
	if w := TrickWinner(table, 0, card.Heart); w != 2 {
		t.Fatalf("expected J♠ to beat 3♠, got seat %d", w)
	}
}

func TestBeats_OffSuitComparisons(t *testing.T) {
	if !Beats(card.CardHeart2, card.CardDiamondA, card.Heart) {
		t.Fatal("lead suit card should beat off-suit card")
	}
	if Beats(card.CardDiamondA, card.CardHeart2, card.Heart) {
		t.Fatal("off-suit card should not beat lead suit card")
	}
	if !Beats(card.CardSpade2, card.CardHeartA, card.Heart) {
		t.Fatal("trump should beat lead suit regardless of rank")
	}
	if Beats(card.CardHeart9, card.CardHeart9, card.Heart) {
		t.Fatal("a card never strictly beats itself")
	}
}

func TestLegalCards_MustFollowSuit(t *testing.T) {
	hand := card.CardList{card.CardSpadeA, card.CardHeart4, card.CardHeartK, card.CardClub2}
	legal := LegalCards(hand, card.Heart)
	if legal.Count() != 2 || !legal.Contains(card.CardHeart4) || !legal.Contains(card.CardHeartK) {
		t.Fatalf("expected only hearts, got %v", legal)
	}
	if err := checkPlay(hand, card.CardSpadeA, card.Heart); !errors.Is(err, ErrMustFollowSuit) {
		t.Fatalf("trump while holding lead suit: expected ErrMustFollowSuit, got %v", err)
	}
	if err := checkPlay(hand, card.CardClub2, card.Heart); !errors.Is(err, ErrIllegalPlay) {
		t.Fatalf("off-suit discard while holding lead suit: expected ErrIllegalPlay, got %v", err)
	}
	if err := checkPlay(hand, card.CardDiamond9, card.Heart); !errors.Is(err, ErrCardNotHeld) {
		t.Fatalf("expected ErrCardNotHeld, got %v", err)
	}
}

func TestLegalCards_VoidInLeadSuitMayPlayAnything(t *testing.T) {
	hand := card.CardList{card.CardSpade5, card.CardClubQ}
	if legal := LegalCards(hand, card.Diamond); legal.Count() != 2 {
		t.Fatalf("void hand should have every card legal, got %v", legal)
	}
	if err := checkPlay(hand, card.CardSpade5, card.Diamond); err != nil {
		t.Fatalf("trump on void should be legal: %v", err)
	}
	if legal := LegalCards(hand, card.SuitNone); legal.Count() != 2 {
		t.Fatalf("leading: every card should be legal, got %v", legal)
	}
}

func TestScore(t *testing.T) {
	cases := []struct{ bid, taken, want int }{
		{3, 3, 13},
		{3, 5, -2},
		{0, 0, 10},
		{2, 0, -2},
		{1, 4, -3},
	}
	for _, tc := range cases {
		if got := Score(tc.bid, tc.taken); got != tc.want {
			t.Fatalf("Score(%d, %d) = %d, want %d", tc.bid, tc.taken, got, tc.want)
		}
	}
}
