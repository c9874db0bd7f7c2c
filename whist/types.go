package whist

import (
	"time"

	"piratwhist/card"
)

const (
	NoSeat = -1
	NoBid  = -1

	MinSeats = 2
	MaxSeats = 8
)

// TrumpSuit is fixed for every round.
const TrumpSuit = card.Spade

// HighCardRank is the lowest rank counted as a high card (J).
const HighCardRank = 11

// RoundSchedule 每局请求发牌数 (按 roundIndex)
var RoundSchedule = [...]int{7, 6, 5, 4, 3, 2, 1, 1, 2, 3, 4, 5, 6, 7}

const RoundCount = len(RoundSchedule)

// Phase 游戏阶段
type Phase byte

const (
	PhaseLobby         Phase = 0
	PhaseDealing       Phase = 1
	PhaseBidding       Phase = 2
	PhasePlaying       Phase = 3
	PhaseBetweenTricks Phase = 4
	PhaseRoundFinished Phase = 5
	PhaseGameFinished  Phase = 6
)

var PhaseDictionary = map[Phase]string{
	PhaseLobby:         "lobby",
	PhaseDealing:       "dealing",
	PhaseBidding:       "bidding",
	PhasePlaying:       "playing",
	PhaseBetweenTricks: "between_tricks",
	PhaseRoundFinished: "round_finished",
	PhaseGameFinished:  "game_finished",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return "unknown"
}

// Deal pacing: the dealing phase lasts long enough for clients to animate every card.
const (
	dealPerCard  = 120 * time.Millisecond
	dealBase     = 600 * time.Millisecond
	dealMinDelay = 800 * time.Millisecond
	dealMaxDelay = 8 * time.Second
)

// RoundRecord summarizes one finished round.
type RoundRecord struct {
	Round    int   `json:"round"`
	CardsPer int   `json:"cardsPer"`
	Bids     []int `json:"bids"`
	Taken    []int `json:"taken"`
	Points   []int `json:"points"`
}
