package room

import (
	"piratwhist/apps/server/internal/codec"
	"piratwhist/internal/logx"
	"piratwhist/whist"
)

func (r *Room) sendLocked(connID, t, reqID string, payload any) {
	if r.broadcast == nil {
		return
	}
	data, err := codec.Encode(t, reqID, payload)
	if err != nil {
		logx.Error("[Room %s] encode %s failed: %v", r.Code, t, err)
		return
	}
	r.broadcast(connID, data)
}

func (r *Room) timingLocked() codec.Timing {
	return codec.Timing{DealEndsAt: r.dealEndsAt, SweepUntil: r.sweepUntil}
}

func (r *Room) sendStateLocked(connID string, seat int, snap whist.Snapshot) {
	s := seat
	r.sendLocked(connID, codec.TypeState, "", codec.StateMessage{
		Code:  r.Code,
		Seat:  &s,
		State: codec.StateFromSnapshot(snap, seat, r.timingLocked()),
	})
}

// broadcastStateLocked pushes every member its own view of the current state.
func (r *Room) broadcastStateLocked() {
	if r.broadcast == nil || len(r.members) == 0 {
		return
	}
	snap := r.game.Snapshot()
	for connID, seat := range r.members {
		r.sendStateLocked(connID, seat, snap)
	}
}
