package card

import (
	"math/rand"
	"testing"
)

func TestNewDeck_Has52DistinctCards(t *testing.T) {
	deck := NewDeck()
	if deck.Count() != 52 {
		t.Fatalf("expected 52 cards, got %d", deck.Count())
	}
	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		if !c.Valid() {
			t.Fatalf("invalid card in deck: %v", c)
		}
		if seen[c] {
			t.Fatalf("duplicate card in deck: %v", c)
		}
		seen[c] = true
	}
}

func TestKey_RoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		got, err := ParseKey(c.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q) err: %v", c.Key(), err)
		}
		if got != c {
			t.Fatalf("ParseKey(%q) = %v, want %v", c.Key(), got, c)
		}
	}
}

func TestKey_Format(t *testing.T) {
	if k := CardHeartT.Key(); k != "10♥" {
		t.Fatalf("expected 10♥, got %q", k)
	}
	if k := CardSpadeA.Key(); k != "A♠" {
		t.Fatalf("expected A♠, got %q", k)
	}
	if CardClub2.Rank() != 2 || CardClubA.Rank() != 14 {
		t.Fatalf("unexpected club ranks: %d %d", CardClub2.Rank(), CardClubA.Rank())
	}
}

func TestParseKey_Rejects(t *testing.T) {
	for _, raw := range []string{"", "1♠", "11♥", "Z♦", "A", "A?"} {
		if _, err := ParseKey(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestSort_SuitThenRank(t *testing.T) {
	hand := CardList{CardClub2, CardSpadeA, CardHeart3, CardSpade4, CardDiamondK}
	hand.Sort()
	want := CardList{CardSpade4, CardSpadeA, CardHeart3, CardDiamondK, CardClub2}
	for i := range want {
		if hand[i] != want[i] {
			t.Fatalf("sorted[%d] = %v, want %v (full=%v)", i, hand[i], want[i], hand)
		}
	}
}

func TestShuffle_SeededIsDeterministic(t *testing.T) {
	a, b := NewDeck(), NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded shuffles diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRemove_KeepsOrder(t *testing.T) {
	hand := CardList{CardSpade2, CardHeart5, CardClubK}
	if !hand.Remove(CardHeart5) {
		t.Fatal("expected Remove to find card")
	}
	if hand.Count() != 2 || hand[0] != CardSpade2 || hand[1] != CardClubK {
		t.Fatalf("unexpected hand after remove: %v", hand)
	}
	if hand.Remove(CardHeart5) {
		t.Fatal("second Remove should report false")
	}
}
