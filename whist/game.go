package whist

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"piratwhist/card"
)

type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	// seats
	n     int
	names []string
	bots  map[int]bool

	// round state
	phase      Phase
	roundIndex int
	cardsPer   int
	hands      []card.CardList
	leader     int
	turn       int
	leadSuit   card.Suit
	table      []card.Card
	winner     int

	bids        []int
	tricksRound []int
	tricksTotal []int
	pointsTotal []int
	history     []RoundRecord

	dealID  uint64
	dealSeq []int
	played  int // cards played this round, including the open trick
	swept   int // cards of tricks already cleared from the table
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	n := cfg.Seats
	g := &Game{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(seed)),
		n:           n,
		names:       make([]string, n),
		bots:        make(map[int]bool, n),
		phase:       PhaseLobby,
		leader:      0,
		turn:        0,
		leadSuit:    card.SuitNone,
		table:       make([]card.Card, n),
		winner:      NoSeat,
		hands:       make([]card.CardList, n),
		bids:        newSeatInts(n, NoBid),
		tricksRound: make([]int, n),
		tricksTotal: make([]int, n),
		pointsTotal: make([]int, n),
	}
	return g, nil
}

func (g *Game) Seats() int { return g.n }

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) validSeat(seat int) bool {
	return seat >= 0 && seat < g.n
}

// SetName sets or clears (empty name) the display name of a seat.
func (g *Game) SetName(seat int, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validSeat(seat) {
		return fmt.Errorf("invalid seat %d", seat)
	}
	g.names[seat] = strings.TrimSpace(name)
	return nil
}

func (g *Game) Name(seat int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validSeat(seat) {
		return ""
	}
	return g.names[seat]
}

// MarkBot hands a seat to the computer. Bot seats never return to humans.
func (g *Game) MarkBot(seat int, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validSeat(seat) {
		return fmt.Errorf("invalid seat %d", seat)
	}
	g.bots[seat] = true
	if name != "" {
		g.names[seat] = name
	}
	return nil
}

func (g *Game) IsBot(seat int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bots[seat]
}

func (g *Game) botSeatsLocked() []int {
	out := make([]int, 0, len(g.bots))
	for seat := range g.bots {
		out = append(out, seat)
	}
	sort.Ints(out)
	return out
}

// Start leaves the lobby. Every seat not listed in humans becomes a bot and the
// first round is dealt.
func (g *Game) Start(humans []int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseLobby {
		return ErrWrongPhase
	}
	isHuman := make(map[int]bool, len(humans))
	for _, seat := range humans {
		if g.validSeat(seat) {
			isHuman[seat] = true
		}
	}
	if len(isHuman) < 1 || g.n < MinSeats {
		return ErrNotEnoughPlayers
	}

	g.bots = make(map[int]bool, g.n)
	botIndex := 1
	for seat := 0; seat < g.n; seat++ {
		if !isHuman[seat] {
			g.bots[seat] = true
			g.names[seat] = fmt.Sprintf("Computer %d", botIndex)
			botIndex++
			continue
		}
		if g.names[seat] == "" {
			g.names[seat] = DefaultPlayerName(seat)
		}
	}

	g.roundIndex = 0
	g.beginDealLocked()
	return nil
}

// DefaultPlayerName is used for humans who never entered a name.
func DefaultPlayerName(seat int) string {
	return fmt.Sprintf("Player %d", seat+1)
}

func (g *Game) beginDealLocked() {
	g.cardsPer = CardsPer(g.roundIndex, g.n)
	g.hands, g.dealSeq = Deal(g.rng, g.n, g.cardsPer)
	g.dealID++
	g.leader = g.roundIndex % g.n
	g.turn = g.leader
	g.leadSuit = card.SuitNone
	g.table = make([]card.Card, g.n)
	g.winner = NoSeat
	g.bids = newSeatInts(g.n, NoBid)
	g.tricksRound = make([]int, g.n)
	g.played = 0
	g.swept = 0
	g.phase = PhaseDealing
}

// DealID identifies the current deal. It increases on every deal.
func (g *Game) DealID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealID
}

// FinishDeal ends the dealing phase of deal dealID and opens bidding.
func (g *Game) FinishDeal(dealID uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseDealing || g.dealID != dealID {
		return ErrStaleDeal
	}
	g.phase = PhaseBidding
	return nil
}

// SetBid records a seat's bid once per round. The last bid moves play on.
func (g *Game) SetBid(seat, bid int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBidding {
		return ErrWrongPhase
	}
	if !g.validSeat(seat) {
		return fmt.Errorf("invalid seat %d", seat)
	}
	if g.bids[seat] != NoBid {
		return ErrDuplicateBid
	}
	if bid < 0 || bid > g.cardsPer {
		return fmt.Errorf("%w: must be between 0 and %d", ErrIllegalBid, g.cardsPer)
	}
	g.bids[seat] = bid

	if g.allBidsInLocked() {
		g.phase = PhasePlaying
		g.turn = g.leader
	}
	return nil
}

func (g *Game) allBidsInLocked() bool {
	for _, b := range g.bids {
		if b == NoBid {
			return false
		}
	}
	return true
}

// PlayResult describes what a single card play caused.
type PlayResult struct {
	Card          card.Card
	TrickComplete bool
	Winner        int
	RoundComplete bool
	Record        *RoundRecord
}

func (g *Game) PlayCard(seat int, c card.Card) (PlayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	res := PlayResult{Card: c, Winner: NoSeat}
	if g.phase != PhasePlaying {
		return res, ErrWrongPhase
	}
	if seat != g.turn {
		return res, ErrNotYourTurn
	}
	if err := checkPlay(g.hands[seat], c, g.leadSuit); err != nil {
		return res, err
	}

	g.hands[seat].Remove(c)
	if g.leadSuit == card.SuitNone {
		g.leadSuit = c.Suit()
	}
	g.table[seat] = c
	g.played++

	if next := g.nextEmptySeatLocked(seat); next != NoSeat {
		g.turn = next
		return res, nil
	}

	// trick complete
	w := TrickWinner(g.table, g.leader, g.leadSuit)
	if w == NoSeat {
		return res, ErrInvalidState("trick without winner")
	}
	g.winner = w
	g.turn = w
	g.tricksRound[w]++
	g.tricksTotal[w]++
	res.TrickComplete = true
	res.Winner = w

	if !g.handsEmptyLocked() {
		g.phase = PhaseBetweenTricks
		return res, nil
	}

	rec := g.scoreRoundLocked()
	g.history = append(g.history, rec)
	g.phase = PhaseRoundFinished
	res.RoundComplete = true
	res.Record = &rec
	return res, nil
}

func (g *Game) nextEmptySeatLocked(from int) int {
	for i := 1; i <= g.n; i++ {
		seat := (from + i) % g.n
		if g.table[seat] == card.CardInvalid {
			return seat
		}
	}
	return NoSeat
}

func (g *Game) handsEmptyLocked() bool {
	for _, h := range g.hands {
		if len(h) > 0 {
			return false
		}
	}
	return true
}

func (g *Game) scoreRoundLocked() RoundRecord {
	rec := RoundRecord{
		Round:    g.roundIndex + 1,
		CardsPer: g.cardsPer,
		Bids:     append([]int(nil), g.bids...),
		Taken:    append([]int(nil), g.tricksRound...),
		Points:   make([]int, g.n),
	}
	for seat := 0; seat < g.n; seat++ {
		pts := Score(g.bids[seat], g.tricksRound[seat])
		rec.Points[seat] = pts
		g.pointsTotal[seat] += pts
	}
	return rec
}

// NextTrick clears the finished trick; the winner leads the next one.
func (g *Game) NextTrick() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseBetweenTricks {
		return ErrWrongPhase
	}
	g.leader = g.winner
	g.turn = g.leader
	for seat := range g.table {
		if g.table[seat] != card.CardInvalid {
			g.swept++
		}
		g.table[seat] = card.CardInvalid
	}
	g.leadSuit = card.SuitNone
	g.winner = NoSeat
	g.phase = PhasePlaying
	return nil
}

// AdvanceRound moves past a finished round. roundIndex must name the round
// that finished, so a repeated request for the same round is rejected.
// It reports whether the game is now over.
func (g *Game) AdvanceRound(roundIndex int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == PhaseGameFinished {
		return true, ErrGameFinished
	}
	if g.phase != PhaseRoundFinished || g.roundIndex != roundIndex {
		return false, ErrStaleRound
	}
	if g.roundIndex >= RoundCount-1 {
		g.phase = PhaseGameFinished
		return true, nil
	}
	g.roundIndex++
	g.beginDealLocked()
	return false, nil
}

func (g *Game) Hand(seat int) card.CardList {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.validSeat(seat) {
		return nil
	}
	return g.hands[seat].Clone()
}

// LegalCards lists what seat may play right now; empty when it is not its turn.
func (g *Game) LegalCards(seat int) card.CardList {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhasePlaying || seat != g.turn {
		return nil
	}
	return LegalCards(g.hands[seat], g.leadSuit)
}

func newSeatInts(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
