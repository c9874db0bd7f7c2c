package room

import (
	"time"

	"piratwhist/whist"
)

// Timings holds every delay the room actor uses.
type Timings struct {
	// Deal returns the dealing window for a round.
	Deal func(cardsPer, n int) time.Duration

	Sweep        time.Duration // lock after a trick resolves
	RoundAdvance time.Duration // round_finished -> next deal
	BotThink     time.Duration
	Grace        time.Duration // reconnect window before takeover
	Watchdog     time.Duration // actor tick
	StallAfter   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Deal:         whist.DealDuration,
		Sweep:        4 * time.Second,
		RoundAdvance: 2 * time.Second,
		BotThink:     600 * time.Millisecond,
		Grace:        30 * time.Second,
		Watchdog:     time.Second,
		StallAfter:   2500 * time.Millisecond,
	}
}

// withDefaults fills zero fields so partial Timings stay usable.
func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.Deal == nil {
		t.Deal = d.Deal
	}
	if t.Sweep <= 0 {
		t.Sweep = d.Sweep
	}
	if t.RoundAdvance <= 0 {
		t.RoundAdvance = d.RoundAdvance
	}
	if t.BotThink <= 0 {
		t.BotThink = d.BotThink
	}
	if t.Grace <= 0 {
		t.Grace = d.Grace
	}
	if t.Watchdog <= 0 {
		t.Watchdog = d.Watchdog
	}
	if t.StallAfter <= 0 {
		t.StallAfter = d.StallAfter
	}
	return t
}
