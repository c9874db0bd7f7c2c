package whist

import "piratwhist/card"

type Snapshot struct {
	Seats      int
	Names      []string
	BotSeats   []int
	Phase      Phase
	RoundIndex int
	CardsPer   int

	Leader   int
	Turn     int
	LeadSuit card.Suit
	Table    []card.Card
	Winner   int

	Bids        []int
	TricksRound []int
	TricksTotal []int
	PointsTotal []int
	History     []RoundRecord

	DealID  uint64
	DealSeq []int
	Played  int
	Swept   int

	// Hands holds every hand; ForSeat strips the ones a viewer may not see.
	Hands []card.CardList
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Seats:       g.n,
		Names:       append([]string(nil), g.names...),
		BotSeats:    g.botSeatsLocked(),
		Phase:       g.phase,
		RoundIndex:  g.roundIndex,
		CardsPer:    g.cardsPer,
		Leader:      g.leader,
		Turn:        g.turn,
		LeadSuit:    g.leadSuit,
		Table:       append([]card.Card(nil), g.table...),
		Winner:      g.winner,
		Bids:        append([]int(nil), g.bids...),
		TricksRound: append([]int(nil), g.tricksRound...),
		TricksTotal: append([]int(nil), g.tricksTotal...),
		PointsTotal: append([]int(nil), g.pointsTotal...),
		DealID:      g.dealID,
		DealSeq:     append([]int(nil), g.dealSeq...),
		Played:      g.played,
		Swept:       g.swept,
		Hands:       make([]card.CardList, g.n),
	}
	for _, rec := range g.history {
		s.History = append(s.History, RoundRecord{
			Round:    rec.Round,
			CardsPer: rec.CardsPer,
			Bids:     append([]int(nil), rec.Bids...),
			Taken:    append([]int(nil), rec.Taken...),
			Points:   append([]int(nil), rec.Points...),
		})
	}
	for seat, h := range g.hands {
		s.Hands[seat] = h.Clone()
	}
	return s
}

// ForSeat returns a copy where only seat's own hand is present. A seat outside
// the table sees no hands at all.
func (s Snapshot) ForSeat(seat int) Snapshot {
	out := s
	out.Hands = make([]card.CardList, len(s.Hands))
	if seat >= 0 && seat < len(s.Hands) {
		out.Hands[seat] = s.Hands[seat].Clone()
	}
	return out
}

func (s Snapshot) IsBot(seat int) bool {
	for _, b := range s.BotSeats {
		if b == seat {
			return true
		}
	}
	return false
}

// CardsOnTable counts cards of the open trick.
func (s Snapshot) CardsOnTable() int {
	n := 0
	for _, c := range s.Table {
		if c != card.CardInvalid {
			n++
		}
	}
	return n
}
