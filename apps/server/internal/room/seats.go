package room

import (
	"fmt"
	"strings"
	"time"

	"piratwhist/apps/server/internal/codec"
	"piratwhist/internal/logx"
	"piratwhist/whist"
)

func (r *Room) handleJoin(e Event) (int, error) {
	now := e.Timestamp
	if seat, ok := r.members[e.ConnID]; ok {
		r.sendLocked(e.ConnID, codec.TypeRoomJoined, e.ReqID, codec.RoomAssigned{Code: r.Code, Seat: seat})
		r.sendStateLocked(e.ConnID, seat, r.game.Snapshot())
		return seat, nil
	}
	seat := whist.NoSeat
	if res := r.clients[e.ClientID]; e.ClientID != "" && res != nil && r.seatReattachableLocked(res.Seat, e.ClientID) {
		seat = res.Seat
	}
	if seat == whist.NoSeat {
		seat = r.freeSeatLocked(now)
	}
	if seat == whist.NoSeat {
		return whist.NoSeat, ErrRoomFull
	}

	// A client holds at most one connection in the room.
	if e.ClientID != "" {
		for connID, clientID := range r.connClient {
			if clientID == e.ClientID && connID != e.ConnID {
				delete(r.members, connID)
				delete(r.connClient, connID)
			}
		}
		r.clients[e.ClientID] = &Reservation{Seat: seat, LastSeen: now}
		r.connClient[e.ConnID] = e.ClientID
	}
	r.members[e.ConnID] = seat
	if _, pending := r.pendingTakeover[seat]; pending {
		delete(r.pendingTakeover, seat)
		logx.Info("[Room %s] Seat %d reclaimed before takeover", r.Code, seat)
	}

	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = r.game.Name(seat)
	}
	if name == "" {
		name = whist.DefaultPlayerName(seat)
	}
	if err := r.game.SetName(seat, name); err != nil {
		return whist.NoSeat, err
	}
	r.updateEmptySinceLocked(now)

	ack := codec.TypeRoomJoined
	if e.Created {
		ack = codec.TypeRoomCreated
	}
	r.sendLocked(e.ConnID, ack, e.ReqID, codec.RoomAssigned{Code: r.Code, Seat: seat})
	logx.Info("[Room %s] %s joined seat %d (conn=%s)", r.Code, name, seat, e.ConnID)

	r.broadcastStateLocked()
	return seat, nil
}

// seatReattachableLocked reports whether a reserved seat can be handed back
// to clientID: it must not have become a bot or be held by another client.
func (r *Room) seatReattachableLocked(seat int, clientID string) bool {
	if r.game.IsBot(seat) {
		return false
	}
	for connID, s := range r.members {
		if s == seat && r.connClient[connID] != clientID {
			return false
		}
	}
	return true
}

// freeSeatLocked picks the first seat not held by a live connection, a
// recently seen reservation or a bot.
func (r *Room) freeSeatLocked(now time.Time) int {
	occupied := make(map[int]bool, len(r.members)+len(r.clients))
	for _, seat := range r.members {
		occupied[seat] = true
	}
	for _, res := range r.clients {
		if now.Sub(res.LastSeen) < r.Config.Timings.Grace {
			occupied[res.Seat] = true
		}
	}
	for seat := 0; seat < r.game.Seats(); seat++ {
		if !occupied[seat] && !r.game.IsBot(seat) {
			return seat
		}
	}
	return whist.NoSeat
}

func (r *Room) seatHasMemberLocked(seat int) bool {
	for _, s := range r.members {
		if s == seat {
			return true
		}
	}
	return false
}

// handleLeave is an explicit leave: the reservation is dropped and, once the
// game has started, the seat goes to a bot at once.
func (r *Room) handleLeave(e Event) error {
	seat, ok := r.members[e.ConnID]
	clientID := r.connClient[e.ConnID]
	delete(r.members, e.ConnID)
	delete(r.connClient, e.ConnID)
	if clientID != "" {
		delete(r.clients, clientID)
	}
	if e.ClientID != "" {
		delete(r.clients, e.ClientID)
	}
	if !ok {
		return nil
	}

	r.updateEmptySinceLocked(e.Timestamp)
	logx.Info("[Room %s] Seat %d left (conn=%s)", r.Code, seat, e.ConnID)

	if r.game.Phase() == whist.PhaseLobby {
		if err := r.game.SetName(seat, ""); err != nil {
			return err
		}
		r.broadcastStateLocked()
		return nil
	}
	delete(r.pendingTakeover, seat)
	r.takeOverSeatLocked(seat, e.Timestamp)
	return nil
}

func (r *Room) handleDisconnect(e Event) error {
	seat, ok := r.members[e.ConnID]
	if !ok {
		return nil
	}
	clientID := r.connClient[e.ConnID]
	delete(r.members, e.ConnID)
	delete(r.connClient, e.ConnID)

	phase := r.game.Phase()
	if res := r.clients[clientID]; clientID != "" && res != nil {
		res.LastSeen = e.Timestamp
	} else if phase == whist.PhaseLobby {
		if err := r.game.SetName(seat, ""); err != nil {
			return err
		}
	}
	r.updateEmptySinceLocked(e.Timestamp)
	logx.Info("[Room %s] Seat %d connection lost (conn=%s)", r.Code, seat, e.ConnID)

	if phase != whist.PhaseLobby && !r.seatHasMemberLocked(seat) && !r.game.IsBot(seat) {
		r.scheduleTakeoverLocked(seat)
	}
	r.broadcastStateLocked()
	return nil
}

// takeOverSeatLocked converts seat to a bot and lets it catch up on any
// pending bid or turn.
func (r *Room) takeOverSeatLocked(seat int, now time.Time) {
	if r.game.Phase() == whist.PhaseLobby {
		return
	}
	if !r.game.IsBot(seat) {
		prev := r.game.Name(seat)
		if prev == "" {
			prev = whist.DefaultPlayerName(seat)
		}
		name := fmt.Sprintf("Computer (for %s)", prev)
		if err := r.game.MarkBot(seat, name); err != nil {
			logx.Error("[Room %s] takeover of seat %d failed: %v", r.Code, seat, err)
			return
		}
		r.bots.Spawn(seat, name)
		logx.Info("[Room %s] Seat %d taken over by bot", r.Code, seat)
	}
	for clientID, res := range r.clients {
		if res.Seat == seat {
			delete(r.clients, clientID)
		}
	}

	r.fillBotBidsLocked(now)
	r.broadcastStateLocked()
	r.scheduleBotTurnLocked(now)
}

func (r *Room) handleUpdateLobby(e Event) error {
	seat, ok := r.members[e.ConnID]
	if !ok {
		return ErrNotAMember
	}
	if seat != 0 || len(r.members) > 1 || r.game.Phase() != whist.PhaseLobby {
		return ErrConfigurationRejected
	}

	seats := whist.ClampSeats(e.Seats)
	bots := whist.ClampBots(e.Bots, seats)
	hostName := strings.TrimSpace(e.Name)
	if hostName == "" {
		hostName = r.game.Name(0)
	}
	if hostName == "" {
		hostName = whist.DefaultPlayerName(0)
	}

	game, err := newLobbyGame(seats, bots, r.Config.Seed)
	if err != nil {
		return err
	}
	if err := game.SetName(0, hostName); err != nil {
		return err
	}
	r.game = game
	r.Config.Seats = seats
	r.Config.Bots = bots

	// Only the host's reservation survives a reshape.
	hostClient := r.connClient[e.ConnID]
	for clientID := range r.clients {
		if clientID != hostClient {
			delete(r.clients, clientID)
		}
	}
	r.pendingTakeover = make(map[int]uint64)
	r.dealEndsAt = time.Time{}
	r.sweepUntil = time.Time{}

	logx.Info("[Room %s] Lobby updated (seats=%d bots=%d)", r.Code, seats, bots)
	r.broadcastStateLocked()
	return nil
}
