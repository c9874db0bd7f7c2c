package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Card 牌
//
// 编码规则:
// - 高4位: 花色 (0:Spade, 1:Heart, 2:Diamond, 3:Club)
// - 低4位: 点数 (2..10, 11:J, 12:Q, 13:K, 14:A)
type Card byte

const (
	MinRank = 2
	MaxRank = 14
)

// New builds a card from suit and rank (2..14). Out-of-range input yields CardInvalid.
func New(s Suit, rank int) Card {
	if !s.Valid() || rank < MinRank || rank > MaxRank {
		return CardInvalid
	}
	return Card(byte(s)<<4 | byte(rank))
}

func (c Card) Valid() bool {
	return c != CardInvalid && c.Suit().Valid() && c.Rank() >= MinRank && c.Rank() <= MaxRank
}

// Rank 获取点数 2-14 (A=14)
func (c Card) Rank() int {
	if c == CardInvalid {
		return 0
	}
	return int(c & 0x0F)
}

// Suit 花色
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

// Key is the client-facing identifier: rank symbol followed by suit symbol, e.g. "10♥".
func (c Card) Key() string {
	if !c.Valid() {
		return ""
	}
	return RankSymbol(c.Rank()) + c.Suit().String()
}

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	return c.Key()
}

// Less orders cards by suit, then rank. Hands are kept in this order.
func (c Card) Less(o Card) bool {
	if c.Suit() != o.Suit() {
		return c.Suit() < o.Suit()
	}
	return c.Rank() < o.Rank()
}

func RankSymbol(rank int) string {
	switch rank {
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	default:
		return strconv.Itoa(rank)
	}
}

// ParseKey 将 "10♥", "A♠" 之类的字符串转换为 Card
func ParseKey(key string) (Card, error) {
	key = strings.TrimSpace(key)
	for _, s := range Suits {
		sym := s.String()
		if !strings.HasSuffix(key, sym) {
			continue
		}
		rank, err := parseRank(strings.TrimSuffix(key, sym))
		if err != nil {
			return CardInvalid, err
		}
		return New(s, rank), nil
	}
	return CardInvalid, fmt.Errorf("invalid card key: %q", key)
}

func parseRank(raw string) (int, error) {
	switch strings.ToUpper(raw) {
	case "J":
		return 11, nil
	case "Q":
		return 12, nil
	case "K":
		return 13, nil
	case "A":
		return 14, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < MinRank || n > 10 {
		return 0, fmt.Errorf("invalid rank: %q", raw)
	}
	return n, nil
}
