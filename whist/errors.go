package whist

import (
	"errors"
	"fmt"
)

var (
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalBid       = errors.New("illegal bid")
	ErrDuplicateBid     = fmt.Errorf("%w: bid already set", ErrIllegalBid)
	ErrIllegalPlay      = errors.New("illegal play")
	ErrCardNotHeld      = fmt.Errorf("%w: card not in hand", ErrIllegalPlay)
	ErrMustFollowSuit   = fmt.Errorf("%w: must follow lead suit", ErrIllegalPlay)
	ErrNotEnoughPlayers = errors.New("need at least one human and two seats")
	ErrStaleDeal        = errors.New("stale deal")
	ErrStaleRound       = errors.New("stale round")
	ErrGameFinished     = errors.New("game finished")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
