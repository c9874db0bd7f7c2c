package gateway

import (
	"errors"
	"fmt"
	"strings"

	"piratwhist/apps/server/internal/codec"
	"piratwhist/apps/server/internal/room"
	"piratwhist/card"
	"piratwhist/internal/logx"
	"piratwhist/whist"
)

var errBadRequest = errors.New("bad request")

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.Decode(data)
	if err != nil {
		c.sendError("", fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	logx.Debug("[Gateway] Received from %s: t=%s reqId=%s", c.ID, env.T, env.ReqID)

	switch env.T {
	case codec.TypePing:
		c.send(codec.TypePong, env.ReqID, struct{}{})
	case codec.TypeCreateRoom:
		c.handleCreateRoom(env)
	case codec.TypeJoinRoom:
		c.handleJoinRoom(env)
	case codec.TypeLeaveRoom:
		c.handleLeaveRoom(env)
	case codec.TypeStartGame:
		c.handleRoomAction(env, room.EventStart)
	case codec.TypeNext:
		c.handleRoomAction(env, room.EventNext)
	case codec.TypeUpdateLobby:
		c.handleUpdateLobby(env)
	case codec.TypeSetBid:
		c.handleSetBid(env)
	case codec.TypePlayCard:
		c.handlePlayCard(env)
	default:
		c.sendError(env.ReqID, fmt.Errorf("%w: unknown message type %q", errBadRequest, env.T))
	}
}

func (c *Connection) bind(env codec.Envelope, v any) bool {
	if err := env.Bind(v); err != nil {
		c.sendError(env.ReqID, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

// clientID prefers the id sent in the payload over the cookie.
func (c *Connection) clientID(fromPayload string) string {
	if id := strings.TrimSpace(fromPayload); id != "" {
		return id
	}
	return c.ClientID
}

func (c *Connection) handleCreateRoom(env codec.Envelope) {
	var req codec.CreateRoomRequest
	if !c.bind(env, &req) {
		return
	}
	r, err := c.Gateway.lobby.Create(req.Players, req.Bots)
	if err != nil {
		c.sendError(env.ReqID, err)
		return
	}
	c.attach(r)
	_, err = r.SubmitEvent(room.Event{
		Type:     room.EventJoin,
		ConnID:   c.ID,
		ClientID: c.clientID(req.ClientID),
		ReqID:    env.ReqID,
		Name:     req.Name,
		Created:  true,
	})
	if err != nil {
		c.detach(r)
		c.sendError(env.ReqID, err)
		return
	}
	logx.Info("[Gateway] %s created room %s", c.ID, r.Code)
}

func (c *Connection) handleJoinRoom(env codec.Envelope) {
	var req codec.JoinRoomRequest
	if !c.bind(env, &req) {
		return
	}
	c.Gateway.lobby.Purge()
	r, err := c.Gateway.lobby.Lookup(strings.TrimSpace(req.Code))
	if err != nil {
		c.sendError(env.ReqID, err)
		return
	}
	c.attach(r)
	_, err = r.SubmitEvent(room.Event{
		Type:     room.EventJoin,
		ConnID:   c.ID,
		ClientID: c.clientID(req.ClientID),
		ReqID:    env.ReqID,
		Name:     req.Name,
	})
	if err != nil {
		c.detach(r)
		c.sendError(env.ReqID, err)
	}
}

func (c *Connection) handleLeaveRoom(env codec.Envelope) {
	var req codec.LeaveRoomRequest
	if !c.bind(env, &req) {
		return
	}
	code := strings.TrimSpace(req.Code)
	if r, err := c.Gateway.lobby.Lookup(code); err == nil {
		_, err := r.SubmitEvent(room.Event{
			Type:     room.EventLeave,
			ConnID:   c.ID,
			ClientID: c.clientID(req.ClientID),
		})
		if err != nil {
			logx.Debug("[Gateway] leave %s from %s: %v", c.ID, code, err)
		}
		c.detach(r)
	}
	c.send(codec.TypeLeft, env.ReqID, codec.Left{Code: code})
}

// roomFor resolves the room named by a request.
func (c *Connection) roomFor(env codec.Envelope, code string) (*room.Room, bool) {
	r, err := c.Gateway.lobby.Lookup(strings.TrimSpace(code))
	if err != nil {
		c.sendError(env.ReqID, err)
		return nil, false
	}
	return r, true
}

func (c *Connection) submit(env codec.Envelope, r *room.Room, e room.Event) {
	e.ConnID = c.ID
	e.ReqID = env.ReqID
	if _, err := r.SubmitEvent(e); err != nil {
		c.sendError(env.ReqID, err)
	}
}

func (c *Connection) handleRoomAction(env codec.Envelope, t room.EventType) {
	var req codec.RoomRequest
	if !c.bind(env, &req) {
		return
	}
	if r, ok := c.roomFor(env, req.Code); ok {
		c.submit(env, r, room.Event{Type: t})
	}
}

func (c *Connection) handleUpdateLobby(env codec.Envelope) {
	var req codec.UpdateLobbyRequest
	if !c.bind(env, &req) {
		return
	}
	if r, ok := c.roomFor(env, req.Code); ok {
		c.submit(env, r, room.Event{Type: room.EventUpdateLobby, Seats: req.Players, Bots: req.Bots, Name: req.Name})
	}
}

func (c *Connection) handleSetBid(env codec.Envelope) {
	var req codec.SetBidRequest
	if !c.bind(env, &req) {
		return
	}
	if r, ok := c.roomFor(env, req.Code); ok {
		c.submit(env, r, room.Event{Type: room.EventBid, Bid: req.Bid})
	}
}

func (c *Connection) handlePlayCard(env codec.Envelope) {
	var req codec.PlayCardRequest
	if !c.bind(env, &req) {
		return
	}
	played, err := card.ParseKey(strings.TrimSpace(req.Card))
	if err != nil {
		c.sendError(env.ReqID, fmt.Errorf("%w: %v", whist.ErrIllegalPlay, err))
		return
	}
	if r, ok := c.roomFor(env, req.Code); ok {
		c.submit(env, r, room.Event{Type: room.EventPlay, Card: played})
	}
}
