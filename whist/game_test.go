package whist

import (
	"errors"
	"testing"

	"piratwhist/card"
)

func newBiddingGame(t *testing.T, seats int) *Game {
	t.Helper()

	g, err := NewGame(Config{Seats: seats, Seed: 42})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if err := g.Start([]int{0}); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if g.Phase() != PhaseDealing {
		t.Fatalf("expected dealing after start, got %v", g.Phase())
	}
	if err := g.FinishDeal(g.DealID()); err != nil {
		t.Fatalf("FinishDeal err: %v", err)
	}
	return g
}

func bidAll(t *testing.T, g *Game, bid int) {
	t.Helper()
	snap := g.Snapshot()
	if bid > snap.CardsPer {
		bid = snap.CardsPer
	}
	for seat := 0; seat < snap.Seats; seat++ {
		if err := g.SetBid(seat, bid); err != nil {
			t.Fatalf("SetBid seat=%d err: %v", seat, err)
		}
	}
}

// playRound plays the lowest legal card for every turn until the round ends.
func playRound(t *testing.T, g *Game) RoundRecord {
	t.Helper()
	for i := 0; i < 100; i++ {
		snap := g.Snapshot()
		switch snap.Phase {
		case PhaseBetweenTricks:
			if err := g.NextTrick(); err != nil {
				t.Fatalf("NextTrick err: %v", err)
			}
			continue
		case PhaseRoundFinished:
			return snap.History[len(snap.History)-1]
		case PhasePlaying:
		default:
			t.Fatalf("unexpected phase %v", snap.Phase)
		}
		assertCardsAccounted(t, snap)
		legal := g.LegalCards(snap.Turn)
		if legal.Count() == 0 {
			t.Fatalf("seat %d has no legal card", snap.Turn)
		}
		if _, err := g.PlayCard(snap.Turn, legal[0]); err != nil {
			t.Fatalf("PlayCard seat=%d card=%v err: %v", snap.Turn, legal[0], err)
		}
	}
	t.Fatal("round did not finish")
	return RoundRecord{}
}

func assertCardsAccounted(t *testing.T, snap Snapshot) {
	t.Helper()
	held := 0
	for _, h := range snap.Hands {
		held += h.Count()
	}
	if got := held + snap.CardsOnTable() + snap.Swept; got != snap.CardsPer*snap.Seats {
		t.Fatalf("card conservation broken: held=%d table=%d swept=%d want=%d",
			held, snap.CardsOnTable(), snap.Swept, snap.CardsPer*snap.Seats)
	}
}

func TestStart_FillsBotsAndNames(t *testing.T) {
	g, err := NewGame(Config{Seats: 4, Seed: 1})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	_ = g.SetName(0, "Ada")
	if err := g.Start([]int{0, 2}); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	snap := g.Snapshot()
	if len(snap.BotSeats) != 2 || snap.BotSeats[0] != 1 || snap.BotSeats[1] != 3 {
		t.Fatalf("expected bots at 1 and 3, got %v", snap.BotSeats)
	}
	if snap.Names[0] != "Ada" || snap.Names[2] != "Player 3" {
		t.Fatalf("unexpected human names: %v", snap.Names)
	}
	if snap.Names[1] != "Computer 1" || snap.Names[3] != "Computer 2" {
		t.Fatalf("unexpected bot names: %v", snap.Names)
	}
	if snap.DealID != 1 || len(snap.DealSeq) != snap.CardsPer*4 {
		t.Fatalf("unexpected deal metadata: id=%d seq=%d", snap.DealID, len(snap.DealSeq))
	}
}

func TestStart_RequiresHumanAndLobby(t *testing.T) {
	g, _ := NewGame(Config{Seats: 3, Seed: 1})
	if err := g.Start(nil); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
	if err := g.Start([]int{0}); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if err := g.Start([]int{0}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("second start: expected ErrWrongPhase, got %v", err)
	}
}

func TestFinishDeal_RejectsStaleDealID(t *testing.T) {
	g, _ := NewGame(Config{Seats: 2, Seed: 1})
	_ = g.Start([]int{0})
	id := g.DealID()
	if err := g.FinishDeal(id + 1); !errors.Is(err, ErrStaleDeal) {
		t.Fatalf("expected ErrStaleDeal, got %v", err)
	}
	if err := g.FinishDeal(id); err != nil {
		t.Fatalf("FinishDeal err: %v", err)
	}
	if err := g.FinishDeal(id); !errors.Is(err, ErrStaleDeal) {
		t.Fatalf("repeat FinishDeal: expected ErrStaleDeal, got %v", err)
	}
}

func TestSetBid_RejectsDuplicateAndRange(t *testing.T) {
	g := newBiddingGame(t, 3)
	per := g.Snapshot().CardsPer

	if err := g.SetBid(0, per+1); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("expected ErrIllegalBid for out-of-range bid, got %v", err)
	}
	if err := g.SetBid(0, -1); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("expected ErrIllegalBid for negative bid, got %v", err)
	}
	if err := g.SetBid(0, 3); err != nil {
		t.Fatalf("SetBid err: %v", err)
	}
	if err := g.SetBid(0, 1); !errors.Is(err, ErrDuplicateBid) {
		t.Fatalf("expected ErrDuplicateBid, got %v", err)
	}
	if got := g.Snapshot().Bids[0]; got != 3 {
		t.Fatalf("duplicate bid overwrote first bid: got %d", got)
	}
}

func TestSetBid_LastBidStartsPlayAtLeader(t *testing.T) {
	g := newBiddingGame(t, 3)
	bidAll(t, g, 1)
	snap := g.Snapshot()
	if snap.Phase != PhasePlaying {
		t.Fatalf("expected playing after all bids, got %v", snap.Phase)
	}
	if snap.Turn != snap.Leader || snap.Leader != 0 {
		t.Fatalf("expected seat 0 to lead round 1, leader=%d turn=%d", snap.Leader, snap.Turn)
	}
}

func TestPlayCard_RejectsOutOfTurnAndWrongPhase(t *testing.T) {
	g := newBiddingGame(t, 3)
	hand := g.Hand(1)
	if _, err := g.PlayCard(1, hand[0]); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase during bidding, got %v", err)
	}
	bidAll(t, g, 0)
	if _, err := g.PlayCard(1, hand[0]); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestPlayCard_FollowSuitEnforced(t *testing.T) {
	g, _ := NewGame(Config{Seats: 2, Seed: 1})
	g.phase = PhasePlaying
	g.cardsPer = 2
	g.hands = []card.CardList{
		{card.CardHeart4, card.CardClub9},
		{card.CardSpadeA, card.CardHeart2},
	}
	g.bids = []int{1, 1}

	if _, err := g.PlayCard(0, card.CardHeart4); err != nil {
		t.Fatalf("lead err: %v", err)
	}
	if _, err := g.PlayCard(1, card.CardSpadeA); !errors.Is(err, ErrMustFollowSuit) {
		t.Fatalf("expected ErrMustFollowSuit, got %v", err)
	}
	res, err := g.PlayCard(1, card.CardHeart2)
	if err != nil {
		t.Fatalf("follow err: %v", err)
	}
	if !res.TrickComplete || res.Winner != 0 {
		t.Fatalf("expected seat 0 to win trick, got %+v", res)
	}
	if g.Phase() != PhaseBetweenTricks {
		t.Fatalf("expected between_tricks, got %v", g.Phase())
	}
	if err := g.NextTrick(); err != nil {
		t.Fatalf("NextTrick err: %v", err)
	}
	snap := g.Snapshot()
	if snap.Leader != 0 || snap.Turn != 0 || snap.LeadSuit != card.SuitNone || snap.CardsOnTable() != 0 {
		t.Fatalf("trick not reset for winner: %+v", snap)
	}
}

func TestPlayRound_ScoresAndRecordsHistory(t *testing.T) {
	g := newBiddingGame(t, 4)
	bidAll(t, g, 1)
	rec := playRound(t, g)

	snap := g.Snapshot()
	if snap.Phase != PhaseRoundFinished {
		t.Fatalf("expected round_finished, got %v", snap.Phase)
	}
	if rec.Round != 1 || rec.CardsPer != 7 {
		t.Fatalf("unexpected record header: %+v", rec)
	}
	taken := 0
	for seat := 0; seat < 4; seat++ {
		taken += rec.Taken[seat]
		if want := Score(rec.Bids[seat], rec.Taken[seat]); rec.Points[seat] != want {
			t.Fatalf("seat %d points=%d want %d", seat, rec.Points[seat], want)
		}
		if snap.PointsTotal[seat] != rec.Points[seat] {
			t.Fatalf("seat %d total=%d want %d", seat, snap.PointsTotal[seat], rec.Points[seat])
		}
	}
	if taken != 7 {
		t.Fatalf("expected 7 tricks taken in total, got %d", taken)
	}
}

func TestAdvanceRound_IsIdempotentPerRound(t *testing.T) {
	g := newBiddingGame(t, 2)
	bidAll(t, g, 0)
	playRound(t, g)

	dealBefore := g.DealID()
	if done, err := g.AdvanceRound(0); err != nil || done {
		t.Fatalf("AdvanceRound(0) = %v, %v", done, err)
	}
	snap := g.Snapshot()
	if snap.RoundIndex != 1 || snap.Phase != PhaseDealing || snap.DealID != dealBefore+1 {
		t.Fatalf("unexpected state after advance: round=%d phase=%v deal=%d", snap.RoundIndex, snap.Phase, snap.DealID)
	}
	if _, err := g.AdvanceRound(0); !errors.Is(err, ErrStaleRound) {
		t.Fatalf("repeat AdvanceRound: expected ErrStaleRound, got %v", err)
	}
	if after := g.Snapshot(); after.RoundIndex != 1 || after.DealID != snap.DealID {
		t.Fatalf("repeat advance mutated state: round=%d deal=%d", after.RoundIndex, after.DealID)
	}
}

func TestFullGame_EndsAfterFourteenRounds(t *testing.T) {
	g := newBiddingGame(t, 3)
	for r := 0; r < RoundCount; r++ {
		if r > 0 {
			if err := g.FinishDeal(g.DealID()); err != nil {
				t.Fatalf("round %d FinishDeal err: %v", r, err)
			}
		}
		if got := g.Snapshot().Leader; got != r%3 {
			t.Fatalf("round %d: expected leader %d, got %d", r, r%3, got)
		}
		bidAll(t, g, 1)
		playRound(t, g)
		done, err := g.AdvanceRound(r)
		if err != nil {
			t.Fatalf("round %d AdvanceRound err: %v", r, err)
		}
		if done != (r == RoundCount-1) {
			t.Fatalf("round %d: done=%v", r, done)
		}
	}
	snap := g.Snapshot()
	if snap.Phase != PhaseGameFinished || len(snap.History) != RoundCount {
		t.Fatalf("expected finished game with %d rounds, got phase=%v history=%d", RoundCount, snap.Phase, len(snap.History))
	}
	if _, err := g.AdvanceRound(RoundCount - 1); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func TestSnapshot_ForSeatHidesOtherHands(t *testing.T) {
	g := newBiddingGame(t, 4)
	view := g.Snapshot().ForSeat(2)
	for seat, h := range view.Hands {
		if seat == 2 && h.Count() == 0 {
			t.Fatal("viewer lost its own hand")
		}
		if seat != 2 && h != nil {
			t.Fatalf("seat %d hand leaked to viewer 2: %v", seat, h)
		}
	}
	if spectator := g.Snapshot().ForSeat(NoSeat); spectator.Hands[0] != nil {
		t.Fatal("spectator view should not contain hands")
	}
}
