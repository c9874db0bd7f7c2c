package card

import (
	"math/rand"
	"sort"
)

type CardList []Card

// NewDeck returns all 52 cards in suit/rank order.
func NewDeck() CardList {
	deck := make(CardList, 0, len(Suits)*(MaxRank-MinRank+1))
	for _, s := range Suits {
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, New(s, r))
		}
	}
	return deck
}

// Count 获取总牌数
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) Shuffle(rng *rand.Rand) {
	if rng == nil {
		rand.Shuffle(len(ds), func(i, j int) {
			ds[i], ds[j] = ds[j], ds[i]
		})
		return
	}
	rng.Shuffle(len(ds), func(i, j int) {
		ds[i], ds[j] = ds[j], ds[i]
	})
}

func (ds CardList) Sort() {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Less(ds[j]) })
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

func (ds *CardList) PopCards(size int) ([]Card, bool) {
	if size > ds.Count() {
		return nil, false
	}
	cards := make([]Card, size)
	copy(cards, (*ds)[:size])
	*ds = (*ds)[size:]
	return cards, true
}

func (ds CardList) Contains(c Card) bool {
	return ds.IndexOf(c) >= 0
}

func (ds CardList) IndexOf(c Card) int {
	for i, cc := range ds {
		if cc == c {
			return i
		}
	}
	return -1
}

// Remove deletes c while keeping order. Reports whether c was present.
func (ds *CardList) Remove(c Card) bool {
	i := ds.IndexOf(c)
	if i < 0 {
		return false
	}
	*ds = append((*ds)[:i], (*ds)[i+1:]...)
	return true
}

// HasSuit reports whether any card is of suit s.
func (ds CardList) HasSuit(s Suit) bool {
	for _, c := range ds {
		if c.Suit() == s {
			return true
		}
	}
	return false
}

func (ds CardList) Keys() []string {
	out := make([]string, 0, len(ds))
	for _, c := range ds {
		out = append(out, c.Key())
	}
	return out
}

func (ds CardList) Clone() CardList {
	if ds == nil {
		return nil
	}
	out := make(CardList, len(ds))
	copy(out, ds)
	return out
}
