package codec

import (
	"time"

	"piratwhist/card"
	"piratwhist/whist"
)

// Timing carries the room's pacing deadlines; zero values are omitted.
type Timing struct {
	DealEndsAt time.Time
	SweepUntil time.Time
}

// StateView is the outward shape of a room's game state for one viewer.
type StateView struct {
	N           int                 `json:"n"`
	Names       []*string           `json:"names"`
	BotSeats    []int               `json:"botSeats"`
	Phase       string              `json:"phase"`
	RoundIndex  int                 `json:"roundIndex"`
	CardsPer    int                 `json:"cardsPer"`
	Leader      int                 `json:"leader"`
	Turn        int                 `json:"turn"`
	LeadSuit    *string             `json:"leadSuit"`
	Table       []*string           `json:"table"`
	Winner      *int                `json:"winner"`
	Bids        []*int              `json:"bids"`
	TricksRound []int               `json:"tricksRound"`
	TricksTotal []int               `json:"tricksTotal"`
	PointsTotal []int               `json:"pointsTotal"`
	History     []whist.RoundRecord `json:"history"`
	DealID      uint64              `json:"dealId"`
	DealSeq     []int               `json:"dealSeq"`
	DealEndsAt  int64               `json:"dealEndsAt,omitempty"`
	SweepUntil  int64               `json:"sweepUntil,omitempty"`
	Hands       [][]string          `json:"hands"`
}

// StateFromSnapshot builds the view for seat; every other seat's hand is null.
func StateFromSnapshot(snap whist.Snapshot, seat int, timing Timing) StateView {
	own := snap.ForSeat(seat)
	v := StateView{
		N:           snap.Seats,
		Names:       make([]*string, snap.Seats),
		BotSeats:    append([]int{}, snap.BotSeats...),
		Phase:       snap.Phase.String(),
		RoundIndex:  snap.RoundIndex,
		CardsPer:    snap.CardsPer,
		Leader:      snap.Leader,
		Turn:        snap.Turn,
		Table:       make([]*string, snap.Seats),
		Bids:        make([]*int, snap.Seats),
		TricksRound: append([]int{}, snap.TricksRound...),
		TricksTotal: append([]int{}, snap.TricksTotal...),
		PointsTotal: append([]int{}, snap.PointsTotal...),
		History:     append([]whist.RoundRecord{}, snap.History...),
		DealID:      snap.DealID,
		DealSeq:     append([]int{}, snap.DealSeq...),
		Hands:       make([][]string, snap.Seats),
	}
	for i, name := range snap.Names {
		if name != "" {
			n := name
			v.Names[i] = &n
		}
	}
	if snap.LeadSuit != card.SuitNone {
		s := snap.LeadSuit.String()
		v.LeadSuit = &s
	}
	for i, c := range snap.Table {
		if c != card.CardInvalid {
			k := c.Key()
			v.Table[i] = &k
		}
	}
	if snap.Winner != whist.NoSeat {
		w := snap.Winner
		v.Winner = &w
	}
	for i, b := range snap.Bids {
		if b != whist.NoBid {
			bid := b
			v.Bids[i] = &bid
		}
	}
	for i, h := range own.Hands {
		if h != nil {
			v.Hands[i] = h.Keys()
		}
	}
	if !timing.DealEndsAt.IsZero() && snap.Phase == whist.PhaseDealing {
		v.DealEndsAt = timing.DealEndsAt.UnixMilli()
	}
	if !timing.SweepUntil.IsZero() && (snap.Phase == whist.PhaseBetweenTricks || snap.Phase == whist.PhaseRoundFinished) {
		v.SweepUntil = timing.SweepUntil.UnixMilli()
	}
	return v
}
