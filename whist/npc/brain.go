package npc

import (
	"piratwhist/card"
	"piratwhist/whist"
)

// GameView is a read-only projection of the game state visible to one bot seat.
type GameView struct {
	Phase    whist.Phase
	Seat     int
	Hand     card.CardList
	CardsPer int
	LeadSuit card.Suit
	Table    []card.Card
	Bids     []int
}

// BrainDecider is the core interface all bot types implement.
type BrainDecider interface {
	// Bid is called once per round while the seat's bid is unset.
	Bid(view GameView) int
	// Play is called when it's the bot's turn; it must return a legal card.
	Play(view GameView) card.Card
	// Name returns a human-readable identifier for debugging.
	Name() string
}

// buildGameView strips a snapshot down to what seat is allowed to know.
func buildGameView(seat int, snap whist.Snapshot) GameView {
	own := snap.ForSeat(seat)
	view := GameView{
		Phase:    snap.Phase,
		Seat:     seat,
		CardsPer: snap.CardsPer,
		LeadSuit: snap.LeadSuit,
		Table:    snap.Table,
		Bids:     snap.Bids,
	}
	if seat >= 0 && seat < len(own.Hands) {
		view.Hand = own.Hands[seat]
	}
	return view
}
