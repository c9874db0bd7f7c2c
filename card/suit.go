package card

type Suit byte

const (
	Spade   Suit = iota // ♠
	Heart               // ♥
	Diamond             // ♦
	Club                // ♣
)

// SuitNone marks "no suit yet", e.g. before the first card of a trick.
const SuitNone Suit = 0x0F

// Suits in display order.
var Suits = [...]Suit{Spade, Heart, Diamond, Club}

func (s Suit) Valid() bool {
	return s <= Club
}

func (s Suit) String() string {
	switch s {
	case Spade:
		return "♠"
	case Heart:
		return "♥"
	case Diamond:
		return "♦"
	case Club:
		return "♣"
	}
	return ""
}

func ParseSuit(sym string) (Suit, bool) {
	for _, s := range Suits {
		if s.String() == sym {
			return s, true
		}
	}
	return SuitNone, false
}
