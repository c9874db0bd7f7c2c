package npc

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"piratwhist/card"
	"piratwhist/internal/logx"
	"piratwhist/whist"
)

// Instance is one computer-controlled seat.
type Instance struct {
	Seat       int
	Brain      BrainDecider
	ThinkDelay time.Duration
}

// Manager tracks the bot seats of one room.
type Manager struct {
	mu         sync.RWMutex
	instances  map[int]*Instance // keyed by seat
	thinkDelay time.Duration
	newBrain   func(name string) BrainDecider
}

// NewManager creates a manager whose bots wait thinkDelay before each card.
func NewManager(thinkDelay time.Duration) *Manager {
	return &Manager{
		instances:  make(map[int]*Instance),
		thinkDelay: thinkDelay,
		newBrain:   func(name string) BrainDecider { return NewRuleBrain(name) },
	}
}

// Spawn puts a bot on seat. Spawning an existing bot seat is a no-op.
func (m *Manager) Spawn(seat int, name string) *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inst := m.instances[seat]; inst != nil {
		return inst
	}
	inst := &Instance{
		Seat:       seat,
		Brain:      m.newBrain(name),
		ThinkDelay: m.thinkDelay,
	}
	m.instances[seat] = inst
	logx.Debug("[NPC] Spawned %s at seat %d", name, seat)
	return inst
}

// Sync makes the managed set equal to seats (used after start and lobby rebuilds).
func (m *Manager) Sync(snap whist.Snapshot) {
	want := make(map[int]bool, len(snap.BotSeats))
	for _, seat := range snap.BotSeats {
		want[seat] = true
		name := ""
		if seat < len(snap.Names) {
			name = snap.Names[seat]
		}
		m.Spawn(seat, name)
	}
	m.mu.Lock()
	for seat := range m.instances {
		if !want[seat] {
			delete(m.instances, seat)
		}
	}
	m.mu.Unlock()
}

func (m *Manager) IsBot(seat int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[seat] != nil
}

func (m *Manager) Seats() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, 0, len(m.instances))
	for seat := range m.instances {
		out = append(out, seat)
	}
	sort.Ints(out)
	return out
}

// GetThinkDelay returns the simulated thinking delay for a bot seat.
func (m *Manager) GetThinkDelay(seat int) time.Duration {
	m.mu.RLock()
	inst := m.instances[seat]
	m.mu.RUnlock()
	if inst == nil {
		return m.thinkDelay
	}
	return inst.ThinkDelay
}

// DecideBid asks the seat's brain for a bid.
func (m *Manager) DecideBid(seat int, snap whist.Snapshot) (int, error) {
	inst := m.instance(seat)
	if inst == nil {
		return 0, fmt.Errorf("seat %d is not a bot", seat)
	}
	bid := inst.Brain.Bid(buildGameView(seat, snap))
	logx.Debug("[NPC] %s (seat=%d) bids %d", inst.Brain.Name(), seat, bid)
	return bid, nil
}

// DecidePlay asks the seat's brain for a card.
func (m *Manager) DecidePlay(seat int, snap whist.Snapshot) (card.Card, error) {
	inst := m.instance(seat)
	if inst == nil {
		return card.CardInvalid, fmt.Errorf("seat %d is not a bot", seat)
	}
	c := inst.Brain.Play(buildGameView(seat, snap))
	if c == card.CardInvalid {
		return c, fmt.Errorf("bot %s at seat %d has no card to play", inst.Brain.Name(), seat)
	}
	logx.Debug("[NPC] %s (seat=%d) plays %s", inst.Brain.Name(), seat, c)
	return c, nil
}

func (m *Manager) instance(seat int) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[seat]
}
