package room

import "errors"

var (
	ErrRoomClosed            = errors.New("room closed")
	ErrRoomFull              = errors.New("room is full")
	ErrNotAMember            = errors.New("not a member of this room")
	ErrConfigurationRejected = errors.New("only the host may change the lobby while alone in it")
)
