package room

import (
	"fmt"
	"sync"
	"time"

	"piratwhist/apps/server/internal/ledger"
	"piratwhist/card"
	"piratwhist/internal/logx"
	"piratwhist/whist"
	"piratwhist/whist/npc"
)

// Room is one game room run as an actor: every mutation goes through the
// event channel and is applied by the run goroutine under mu.
type Room struct {
	Code   string
	Config Config

	mu       sync.RWMutex
	game     *whist.Game
	bots     *npc.Manager
	closed   bool
	stopOnce sync.Once

	// Seating and reconnection.
	members         map[string]int          // connID -> seat
	connClient      map[string]string       // connID -> durable client id
	clients         map[string]*Reservation // client id -> seat reservation
	pendingTakeover map[int]uint64          // seat -> takeover token
	takeoverSeq     uint64
	emptySince      time.Time

	// Event channel for actor pattern
	events chan Event
	done   chan struct{}

	// Scheduling state, see timer.go.
	timerGen     uint64
	bot          botTicket
	dealEndsAt   time.Time
	sweepUntil   time.Time
	lastActionAt time.Time
	gameID       string

	broadcast     func(connID string, data []byte)
	roundEndHooks []RoundEndHook
}

// Config contains room settings chosen at creation.
type Config struct {
	Seats   int
	Bots    int
	Seed    int64 // 0 => time-based shuffle
	Timings Timings
}

// Reservation keeps a seat for a durable client id across reconnects.
type Reservation struct {
	Seat     int
	LastSeen time.Time
}

// Event types for the actor message queue
type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventDisconnect
	EventStart
	EventUpdateLobby
	EventBid
	EventPlay
	EventNext
	EventTimer
	EventClose
)

// Event represents a message to the room actor
type Event struct {
	Type     EventType
	ConnID   string
	ClientID string
	ReqID    string
	Name     string
	Created  bool // join of the creating connection, acked as room_created
	Seats    int
	Bots     int
	Bid      int
	Card     card.Card
	Fence    fence

	Timestamp time.Time
	Response  chan Result
}

// Result is the actor's reply to an event.
type Result struct {
	Seat int
	Err  error
}

// RoundEndInfo is emitted after a round is scored.
type RoundEndInfo struct {
	RoomCode string
	GameID   string
	At       time.Time
	Record   whist.RoundRecord
	Names    []string
	GameOver bool
	Points   []int
}

// RoundEndHook is a post-round callback.
type RoundEndHook func(info RoundEndInfo)

// New creates a room in the lobby phase and starts its actor goroutine.
func New(code string, cfg Config, broadcastFn func(connID string, data []byte), ledgerService ledger.Service) (*Room, error) {
	cfg.Seats = whist.ClampSeats(cfg.Seats)
	cfg.Bots = whist.ClampBots(cfg.Bots, cfg.Seats)
	cfg.Timings = cfg.Timings.withDefaults()

	game, err := newLobbyGame(cfg.Seats, cfg.Bots, cfg.Seed)
	if err != nil {
		return nil, err
	}
	r := &Room{
		Code:            code,
		Config:          cfg,
		game:            game,
		bots:            npc.NewManager(cfg.Timings.BotThink),
		members:         make(map[string]int),
		connClient:      make(map[string]string),
		clients:         make(map[string]*Reservation),
		pendingTakeover: make(map[int]uint64),
		events:          make(chan Event, 256),
		done:            make(chan struct{}),
		emptySince:      time.Now(),
		lastActionAt:    time.Now(),
		broadcast:       broadcastFn,
	}
	if ledgerService != nil {
		r.roundEndHooks = append(r.roundEndHooks, ledgerHook(ledgerService))
	}

	go r.run()

	logx.Info("[Room %s] Created (seats=%d bots=%d)", code, cfg.Seats, cfg.Bots)
	return r, nil
}

// newLobbyGame builds a lobby with bots pre-placed in seats 1..bots.
func newLobbyGame(seats, bots int, seed int64) (*whist.Game, error) {
	g, err := whist.NewGame(whist.Config{Seats: seats, Seed: seed})
	if err != nil {
		return nil, err
	}
	for seat := 1; seat <= bots; seat++ {
		if err := g.MarkBot(seat, fmt.Sprintf("Computer %d", seat)); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func ledgerHook(svc ledger.Service) RoundEndHook {
	return func(info RoundEndInfo) {
		svc.RecordRound(info.RoomCode, info.GameID, info.At, info.Record, info.Names)
		if info.GameOver {
			svc.RecordGame(info.RoomCode, info.GameID, info.At, info.Names, info.Points, info.Record.Round)
		}
	}
}

// run is the main actor loop
func (r *Room) run() {
	ticker := time.NewTicker(r.Config.Timings.Watchdog)
	defer ticker.Stop()

	for {
		select {
		case event := <-r.events:
			res := r.handleEvent(event)
			if event.Response != nil {
				event.Response <- res
			}
		case <-ticker.C:
			r.tick()
		case <-r.done:
			logx.Debug("[Room %s] Actor stopped", r.Code)
			return
		}
	}
}

func (r *Room) handleEvent(e Event) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed && e.Type != EventClose {
		return Result{Seat: whist.NoSeat, Err: ErrRoomClosed}
	}

	seat, err := whist.NoSeat, error(nil)
	switch e.Type {
	case EventJoin:
		seat, err = r.handleJoin(e)
	case EventLeave:
		err = r.handleLeave(e)
	case EventDisconnect:
		err = r.handleDisconnect(e)
	case EventStart:
		err = r.handleStart(e)
	case EventUpdateLobby:
		err = r.handleUpdateLobby(e)
	case EventBid:
		err = r.handleBid(e)
	case EventPlay:
		err = r.handlePlay(e)
	case EventNext:
		err = r.handleNext(e)
	case EventTimer:
		r.handleTimer(e.Fence, e.Timestamp)
	case EventClose:
		r.stopLocked()
	default:
		err = fmt.Errorf("unknown event type: %d", e.Type)
	}
	return Result{Seat: seat, Err: err}
}

func (r *Room) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.watchdogLocked(time.Now())
}

// SubmitEvent sends an event to the actor and waits for its reply.
func (r *Room) SubmitEvent(e Event) (Result, error) {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan Result, 1)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return Result{Seat: whist.NoSeat}, ErrRoomClosed
	}

	select {
	case r.events <- e:
	case <-r.done:
		return Result{Seat: whist.NoSeat}, ErrRoomClosed
	}

	select {
	case res := <-e.Response:
		return res, res.Err
	case <-r.done:
		return Result{Seat: whist.NoSeat}, ErrRoomClosed
	}
}

// Stop shuts down the room actor
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	r.closed = true
	r.pendingTakeover = make(map[int]uint64)
	r.bot = botTicket{}
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

func (r *Room) updateEmptySinceLocked(now time.Time) {
	if len(r.members) == 0 {
		if r.emptySince.IsZero() {
			r.emptySince = now
		}
		return
	}
	r.emptySince = time.Time{}
}

// IsIdleFor reports whether the room has had no live member for ttl.
func (r *Room) IsIdleFor(ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return true
	}
	if len(r.members) > 0 || r.emptySince.IsZero() {
		return false
	}
	return time.Since(r.emptySince) >= ttl
}

func (r *Room) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Snapshot returns the full authoritative state, hands included.
func (r *Room) Snapshot() whist.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game.Snapshot()
}

// MemberCount returns the number of live connections.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// AddRoundEndHook registers a post-round callback.
func (r *Room) AddRoundEndHook(hook RoundEndHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	r.roundEndHooks = append(r.roundEndHooks, hook)
	r.mu.Unlock()
}

func (r *Room) dispatchRoundEndHooks(info RoundEndInfo) {
	hooks := append([]RoundEndHook(nil), r.roundEndHooks...)
	for _, hook := range hooks {
		go func(cb RoundEndHook) {
			defer func() {
				if rec := recover(); rec != nil {
					logx.Error("[Room %s] round end hook panic: %v", r.Code, rec)
				}
			}()
			cb(info)
		}(hook)
	}
}
