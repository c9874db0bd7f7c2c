package room

import (
	"errors"
	"time"

	"piratwhist/internal/logx"
	"piratwhist/whist"
)

type timerKind byte

const (
	timerDeal timerKind = iota + 1
	timerTrick
	timerRound
	timerBotTurn
	timerTakeover
)

func (k timerKind) String() string {
	switch k {
	case timerDeal:
		return "deal"
	case timerTrick:
		return "trick"
	case timerRound:
		return "round"
	case timerBotTurn:
		return "bot-turn"
	case timerTakeover:
		return "takeover"
	default:
		return "unknown"
	}
}

// fence is the state a timer captured when it was armed. A timer whose fence
// no longer matches the live state is dropped.
type fence struct {
	kind       timerKind
	gen        uint64
	dealID     uint64
	roundIndex int
	phase      whist.Phase

	seat   int    // bot turn, takeover
	played int    // cards played this round, trick and bot turn
	token  uint64 // takeover
}

// turnKey identifies one bot turn within a deal.
type turnKey struct {
	dealID uint64
	played int
	seat   int
}

// botTicket is the single outstanding bot turn of a room.
type botTicket struct {
	live bool
	key  turnKey
	gen  uint64
	at   time.Time
}

// armLocked schedules f to be submitted back to the actor after delay.
func (r *Room) armLocked(delay time.Duration, f fence) uint64 {
	r.timerGen++
	f.gen = r.timerGen
	time.AfterFunc(delay, func() {
		if _, err := r.SubmitEvent(Event{Type: EventTimer, Fence: f}); err != nil && !errors.Is(err, ErrRoomClosed) {
			logx.Error("[Room %s] %s timer submit failed: %v", r.Code, f.kind, err)
		}
	})
	return f.gen
}

func (r *Room) handleTimer(f fence, now time.Time) {
	if f.kind == timerTakeover {
		r.fireTakeoverLocked(f, now)
		return
	}

	snap := r.game.Snapshot()
	if snap.Phase != f.phase || snap.DealID != f.dealID || snap.RoundIndex != f.roundIndex {
		logx.Debug("[Room %s] stale %s timer dropped (gen=%d)", r.Code, f.kind, f.gen)
		return
	}

	var err error
	switch f.kind {
	case timerDeal:
		if err = r.game.FinishDeal(f.dealID); err == nil {
			r.dealEndsAt = time.Time{}
			r.fillBotBidsLocked(now)
			r.broadcastStateLocked()
			r.scheduleBotTurnLocked(now)
		}
	case timerTrick:
		if snap.Played != f.played {
			logx.Debug("[Room %s] stale trick timer dropped (gen=%d)", r.Code, f.gen)
			return
		}
		err = r.nextTrickLocked(now)
	case timerRound:
		err = r.advanceRoundLocked(f.roundIndex, now)
		if errors.Is(err, whist.ErrStaleRound) || errors.Is(err, whist.ErrGameFinished) {
			logx.Debug("[Room %s] round %d already advanced", r.Code, f.roundIndex)
			return
		}
	case timerBotTurn:
		err = r.fireBotTurnLocked(f, snap, now)
	}
	if err != nil {
		logx.Error("[Room %s] %s timer failed: %v", r.Code, f.kind, err)
	}
}

// scheduleBotTurnLocked arms a bot move when a bot holds the turn. A live
// ticket for the same turn makes this a no-op unless it is older than
// StallAfter, in which case it is considered lost and replaced.
func (r *Room) scheduleBotTurnLocked(now time.Time) {
	snap := r.game.Snapshot()
	if snap.Phase != whist.PhasePlaying || !snap.IsBot(snap.Turn) {
		return
	}
	key := turnKey{dealID: snap.DealID, played: snap.Played, seat: snap.Turn}
	if r.bot.live && r.bot.key == key && now.Sub(r.bot.at) < r.Config.Timings.StallAfter {
		return
	}
	if !r.bots.IsBot(snap.Turn) {
		r.bots.Spawn(snap.Turn, snap.Names[snap.Turn])
	}
	gen := r.armLocked(r.bots.GetThinkDelay(snap.Turn), fence{
		kind:       timerBotTurn,
		dealID:     snap.DealID,
		roundIndex: snap.RoundIndex,
		phase:      whist.PhasePlaying,
		seat:       snap.Turn,
		played:     snap.Played,
	})
	r.bot = botTicket{live: true, key: key, gen: gen, at: now}
}

func (r *Room) fireBotTurnLocked(f fence, snap whist.Snapshot, now time.Time) error {
	if !r.bot.live || r.bot.gen != f.gen {
		logx.Debug("[Room %s] superseded bot ticket dropped (gen=%d)", r.Code, f.gen)
		return nil
	}
	r.bot.live = false
	if snap.Played != f.played || snap.Turn != f.seat || !snap.IsBot(f.seat) {
		logx.Debug("[Room %s] stale bot turn dropped (seat=%d)", r.Code, f.seat)
		return nil
	}
	c, err := r.bots.DecidePlay(f.seat, snap)
	if err != nil {
		return err
	}
	return r.playLocked(f.seat, c, now)
}

// watchdogLocked re-arms a bot turn that has stalled, e.g. after a lost timer.
func (r *Room) watchdogLocked(now time.Time) {
	snap := r.game.Snapshot()
	if snap.Phase != whist.PhasePlaying || !snap.IsBot(snap.Turn) {
		return
	}
	if now.Sub(r.lastActionAt) < r.Config.Timings.StallAfter {
		return
	}
	key := turnKey{dealID: snap.DealID, played: snap.Played, seat: snap.Turn}
	if r.bot.live && r.bot.key == key && now.Sub(r.bot.at) < r.Config.Timings.StallAfter {
		return
	}
	logx.Warn("[Room %s] bot seat %d stalled for %s, re-arming", r.Code, snap.Turn, now.Sub(r.lastActionAt).Round(time.Millisecond))
	r.scheduleBotTurnLocked(now)
}

func (r *Room) scheduleTakeoverLocked(seat int) {
	if _, pending := r.pendingTakeover[seat]; pending {
		return
	}
	r.takeoverSeq++
	token := r.takeoverSeq
	r.pendingTakeover[seat] = token
	r.armLocked(r.Config.Timings.Grace, fence{kind: timerTakeover, seat: seat, token: token})
	logx.Info("[Room %s] Seat %d has %s to reconnect", r.Code, seat, r.Config.Timings.Grace)
}

func (r *Room) fireTakeoverLocked(f fence, now time.Time) {
	if token, ok := r.pendingTakeover[f.seat]; !ok || token != f.token {
		logx.Debug("[Room %s] takeover of seat %d cancelled", r.Code, f.seat)
		return
	}
	delete(r.pendingTakeover, f.seat)
	if r.game.Phase() == whist.PhaseLobby || r.seatHasMemberLocked(f.seat) {
		return
	}
	for _, res := range r.clients {
		if res.Seat == f.seat && now.Sub(res.LastSeen) < r.Config.Timings.Grace {
			return
		}
	}
	r.takeOverSeatLocked(f.seat, now)
}
