package lobby

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"piratwhist/apps/server/internal/ledger"
	"piratwhist/apps/server/internal/room"
	"piratwhist/internal/logx"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidRoomCode  = errors.New("room code must be 4 digits")
	ErrNoCodesAvailable = errors.New("no free room codes")
)

const (
	codeSpace       = 10000
	maxCodeAttempts = 1000
)

// Options configures the registry.
type Options struct {
	EmptyRoomTTL time.Duration
	ReapInterval time.Duration
	Timings      room.Timings
	Seed         int64 // 0 => time-based codes and shuffles
}

// Lobby owns every live room, keyed by its 4-digit code.
type Lobby struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
	rng   *rand.Rand

	opts      Options
	broadcast func(connID string, data []byte)
	ledger    ledger.Service
}

// New creates an empty registry. broadcastFn is handed to every room it creates.
func New(opts Options, broadcastFn func(connID string, data []byte), ledgerService ledger.Service) *Lobby {
	if opts.EmptyRoomTTL <= 0 {
		opts.EmptyRoomTTL = 120 * time.Second
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = 15 * time.Second
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Lobby{
		rooms:     make(map[string]*room.Room),
		rng:       rand.New(rand.NewSource(seed)),
		opts:      opts,
		broadcast: broadcastFn,
		ledger:    ledgerService,
	}
}

// ValidCode reports whether code is exactly four ASCII digits.
func ValidCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Create purges idle rooms and opens a new lobby room under a fresh code.
func (l *Lobby) Create(seats, bots int) (*room.Room, error) {
	l.Purge()

	l.mu.Lock()
	defer l.mu.Unlock()

	code, err := l.newCodeLocked()
	if err != nil {
		return nil, err
	}
	var seed int64
	if l.opts.Seed != 0 {
		seed = l.rng.Int63()
	}
	r, err := room.New(code, room.Config{
		Seats:   seats,
		Bots:    bots,
		Seed:    seed,
		Timings: l.opts.Timings,
	}, l.broadcast, l.ledger)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	l.rooms[code] = r
	logx.Info("[Lobby] Room %s created, live rooms: %d", code, len(l.rooms))
	return r, nil
}

// newCodeLocked draws codes until one is not in use.
func (l *Lobby) newCodeLocked() (string, error) {
	if len(l.rooms) >= codeSpace {
		return "", ErrNoCodesAvailable
	}
	for i := 0; i < maxCodeAttempts; i++ {
		code := fmt.Sprintf("%04d", l.rng.Intn(codeSpace))
		if _, taken := l.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrNoCodesAvailable
}

// Lookup returns the live room for code.
func (l *Lobby) Lookup(code string) (*room.Room, error) {
	if !ValidCode(code) {
		return nil, ErrInvalidRoomCode
	}
	l.mu.RLock()
	r := l.rooms[code]
	l.mu.RUnlock()
	if r == nil || r.IsClosed() {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Purge stops and removes rooms that have been empty longer than the TTL.
func (l *Lobby) Purge() int {
	l.mu.Lock()
	var stale []*room.Room
	for code, r := range l.rooms {
		if r.IsIdleFor(l.opts.EmptyRoomTTL) {
			stale = append(stale, r)
			delete(l.rooms, code)
		}
	}
	l.mu.Unlock()

	for _, r := range stale {
		r.Stop()
		logx.Info("[Lobby] Purged room %s", r.Code)
	}
	return len(stale)
}

// Run purges on ReapInterval until ctx is done.
func (l *Lobby) Run(ctx context.Context) {
	ticker := time.NewTicker(l.opts.ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Purge()
		}
	}
}

// Codes lists live room codes, sorted.
func (l *Lobby) Codes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	codes := make([]string, 0, len(l.rooms))
	for code := range l.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Close stops every room.
func (l *Lobby) Close() {
	l.mu.Lock()
	rooms := l.rooms
	l.rooms = make(map[string]*room.Room)
	l.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
