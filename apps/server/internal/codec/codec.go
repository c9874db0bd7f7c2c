package codec

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound message types.
const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeStartGame   = "start_game"
	TypeUpdateLobby = "update_lobby"
	TypeSetBid      = "set_bid"
	TypePlayCard    = "play_card"
	TypeNext        = "next"
	TypePing        = "ping"
)

// Outbound message types.
const (
	TypeRoomCreated = "room_created"
	TypeRoomJoined  = "room_joined"
	TypeLeft        = "left"
	TypeState       = "state"
	TypeError       = "error"
	TypePong        = "pong"
)

// Envelope is the inbound frame: {"t": type, "reqId": id, "p": payload}.
type Envelope struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId,omitempty"`
	P     json.RawMessage `json:"p,omitempty"`
}

// OutEnvelope is the outbound frame.
type OutEnvelope struct {
	T          string `json:"t"`
	ReqID      string `json:"reqId,omitempty"`
	ServerTsMs int64  `json:"ts"`
	P          any    `json:"p,omitempty"`
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.T == "" {
		return env, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// Bind decodes the payload into v. A missing payload leaves v untouched.
func (e Envelope) Bind(v any) error {
	if len(e.P) == 0 || string(e.P) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.P, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.T, err)
	}
	return nil
}

func Encode(t, reqID string, payload any) ([]byte, error) {
	return json.Marshal(OutEnvelope{
		T:          t,
		ReqID:      reqID,
		ServerTsMs: time.Now().UnixMilli(),
		P:          payload,
	})
}
