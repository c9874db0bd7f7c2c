package room

import (
	"fmt"
	"sort"
	"time"

	"piratwhist/card"
	"piratwhist/internal/logx"
	"piratwhist/whist"
)

func (r *Room) seatOfLocked(connID string) (int, error) {
	seat, ok := r.members[connID]
	if !ok {
		return whist.NoSeat, ErrNotAMember
	}
	return seat, nil
}

func (r *Room) handleStart(e Event) error {
	if _, err := r.seatOfLocked(e.ConnID); err != nil {
		return err
	}
	if r.game.Phase() != whist.PhaseLobby {
		return whist.ErrWrongPhase
	}

	humans := make([]int, 0, len(r.members))
	for _, seat := range r.members {
		humans = append(humans, seat)
	}
	sort.Ints(humans)
	if err := r.game.Start(humans); err != nil {
		return err
	}
	r.gameID = fmt.Sprintf("%s-%d", r.Code, e.Timestamp.UnixMilli())
	r.bots.Sync(r.game.Snapshot())

	logx.Info("[Room %s] Game %s started (humans=%v bots=%v)", r.Code, r.gameID, humans, r.bots.Seats())
	r.enterDealingLocked(e.Timestamp)
	return nil
}

// enterDealingLocked opens the deal animation window of a freshly dealt round.
func (r *Room) enterDealingLocked(now time.Time) {
	snap := r.game.Snapshot()
	window := r.Config.Timings.Deal(snap.CardsPer, snap.Seats)
	r.dealEndsAt = now.Add(window)
	r.sweepUntil = time.Time{}
	r.lastActionAt = now
	r.armLocked(window, fence{
		kind:       timerDeal,
		dealID:     snap.DealID,
		roundIndex: snap.RoundIndex,
		phase:      whist.PhaseDealing,
	})
	logx.Debug("[Room %s] Deal %d round %d (cardsPer=%d window=%s)",
		r.Code, snap.DealID, snap.RoundIndex+1, snap.CardsPer, window)
	r.broadcastStateLocked()
}

// fillBotBidsLocked lets every bot without a bid choose one. The last bid
// moves the game into playing.
func (r *Room) fillBotBidsLocked(now time.Time) {
	snap := r.game.Snapshot()
	if snap.Phase != whist.PhaseBidding {
		return
	}
	for _, seat := range snap.BotSeats {
		if snap.Bids[seat] != whist.NoBid {
			continue
		}
		bid, err := r.bots.DecideBid(seat, snap)
		if err != nil {
			logx.Error("[Room %s] bot bid seat=%d: %v", r.Code, seat, err)
			continue
		}
		if err := r.game.SetBid(seat, bid); err != nil {
			logx.Error("[Room %s] bot bid seat=%d rejected: %v", r.Code, seat, err)
		}
	}
	r.lastActionAt = now
}

func (r *Room) handleBid(e Event) error {
	seat, err := r.seatOfLocked(e.ConnID)
	if err != nil {
		return err
	}
	if err := r.game.SetBid(seat, e.Bid); err != nil {
		return err
	}
	r.lastActionAt = e.Timestamp
	logx.Debug("[Room %s] Seat %d bids %d", r.Code, seat, e.Bid)
	r.broadcastStateLocked()
	r.scheduleBotTurnLocked(e.Timestamp)
	return nil
}

func (r *Room) handlePlay(e Event) error {
	seat, err := r.seatOfLocked(e.ConnID)
	if err != nil {
		return err
	}
	return r.playLocked(seat, e.Card, e.Timestamp)
}

// playLocked applies one card for seat and schedules whatever follows it.
func (r *Room) playLocked(seat int, c card.Card, now time.Time) error {
	res, err := r.game.PlayCard(seat, c)
	if err != nil {
		return err
	}
	r.lastActionAt = now
	logx.Debug("[Room %s] Seat %d plays %s", r.Code, seat, res.Card)

	if res.TrickComplete {
		r.sweepUntil = now.Add(r.Config.Timings.Sweep)
		snap := r.game.Snapshot()
		if res.RoundComplete {
			r.armLocked(r.Config.Timings.RoundAdvance, fence{
				kind:       timerRound,
				dealID:     snap.DealID,
				roundIndex: snap.RoundIndex,
				phase:      whist.PhaseRoundFinished,
			})
			logx.Info("[Room %s] Round %d finished, points=%v", r.Code, res.Record.Round, res.Record.Points)
			r.dispatchRoundEndHooks(RoundEndInfo{
				RoomCode: r.Code,
				GameID:   r.gameID,
				At:       now.UTC(),
				Record:   *res.Record,
				Names:    snap.Names,
				GameOver: snap.RoundIndex >= whist.RoundCount-1,
				Points:   snap.PointsTotal,
			})
		} else {
			r.armLocked(r.Config.Timings.Sweep, fence{
				kind:       timerTrick,
				dealID:     snap.DealID,
				roundIndex: snap.RoundIndex,
				phase:      whist.PhaseBetweenTricks,
				played:     snap.Played,
			})
		}
	}

	r.broadcastStateLocked()
	r.scheduleBotTurnLocked(now)
	return nil
}

func (r *Room) handleNext(e Event) error {
	if _, err := r.seatOfLocked(e.ConnID); err != nil {
		return err
	}
	switch r.game.Phase() {
	case whist.PhaseBetweenTricks:
		if e.Timestamp.Before(r.sweepUntil) {
			return nil
		}
		return r.nextTrickLocked(e.Timestamp)
	case whist.PhaseRoundFinished:
		return r.advanceRoundLocked(r.game.Snapshot().RoundIndex, e.Timestamp)
	default:
		return whist.ErrWrongPhase
	}
}

func (r *Room) nextTrickLocked(now time.Time) error {
	if err := r.game.NextTrick(); err != nil {
		return err
	}
	r.lastActionAt = now
	r.broadcastStateLocked()
	r.scheduleBotTurnLocked(now)
	return nil
}

// advanceRoundLocked leaves round_finished for roundIndex. A repeat for the
// same round fails with whist.ErrStaleRound.
func (r *Room) advanceRoundLocked(roundIndex int, now time.Time) error {
	finished, err := r.game.AdvanceRound(roundIndex)
	if err != nil {
		return err
	}
	if finished {
		r.sweepUntil = time.Time{}
		logx.Info("[Room %s] Game %s finished", r.Code, r.gameID)
		r.broadcastStateLocked()
		return nil
	}
	r.enterDealingLocked(now)
	return nil
}
