package gateway

import (
	"errors"

	"piratwhist/apps/server/internal/lobby"
	"piratwhist/apps/server/internal/room"
	"piratwhist/whist"
)

// Wire error codes.
const (
	CodeRoomNotFound     = "room_not_found"
	CodeRoomFull         = "room_full"
	CodeInvalidCode      = "invalid_code"
	CodeNotMember        = "not_member"
	CodeWrongPhase       = "wrong_phase"
	CodeNotYourTurn      = "not_your_turn"
	CodeIllegalBid       = "illegal_bid"
	CodeDuplicateBid     = "duplicate_bid"
	CodeIllegalPlay      = "illegal_play"
	CodeConfigRejected   = "config_rejected"
	CodeNotEnoughPlayers = "not_enough_players"
	CodeBadRequest       = "bad_request"
	CodeInternal         = "internal"
)

// ErrorCode maps an action error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, lobby.ErrRoomNotFound), errors.Is(err, room.ErrRoomClosed):
		return CodeRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, lobby.ErrInvalidRoomCode):
		return CodeInvalidCode
	case errors.Is(err, room.ErrNotAMember):
		return CodeNotMember
	case errors.Is(err, whist.ErrWrongPhase):
		return CodeWrongPhase
	case errors.Is(err, whist.ErrNotYourTurn):
		return CodeNotYourTurn
	case errors.Is(err, whist.ErrDuplicateBid):
		return CodeDuplicateBid
	case errors.Is(err, whist.ErrIllegalBid):
		return CodeIllegalBid
	case errors.Is(err, whist.ErrIllegalPlay):
		return CodeIllegalPlay
	case errors.Is(err, room.ErrConfigurationRejected):
		return CodeConfigRejected
	case errors.Is(err, whist.ErrNotEnoughPlayers):
		return CodeNotEnoughPlayers
	case errors.Is(err, errBadRequest):
		return CodeBadRequest
	default:
		return CodeInternal
	}
}
