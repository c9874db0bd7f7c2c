package gateway

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"piratwhist/apps/server/internal/codec"
	"piratwhist/apps/server/internal/ledger"
	"piratwhist/apps/server/internal/lobby"
	"piratwhist/apps/server/internal/room"
	"piratwhist/internal/logx"

	"github.com/gorilla/websocket"
)

// ClientCookie carries the durable client id for browsers that do not send one.
const ClientCookie = "pw_client"

const (
	sendBuffer   = 256
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID       string
	ClientID string // from the pw_client cookie
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time

	done      chan struct{}
	closeOnce sync.Once

	// Current room association
	mu   sync.Mutex
	Room *room.Room
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	lobby       *lobby.Lobby
}

// New creates a gateway together with the room registry it routes to.
func New(opts lobby.Options, ledgerService ledger.Service) *Gateway {
	g := &Gateway{
		connections: make(map[string]*Connection),
	}
	g.lobby = lobby.New(opts, g.sendTo, ledgerService)
	return g
}

func (g *Gateway) Lobby() *lobby.Lobby {
	return g.lobby
}

// HandleWebSocket handles WebSocket upgrade and connection
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID, header := clientIDFromRequest(r)
	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		logx.Warn("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	c := &Connection{
		ID:       connID,
		ClientID: clientID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Gateway:  g,
		LastPing: time.Now(),
		done:     make(chan struct{}),
	}
	g.connections[connID] = c
	total := len(g.connections)
	g.mu.Unlock()

	logx.Info("[Gateway] Client connected: %s, total: %d", connID, total)

	go c.readPump()
	go c.writePump()
}

// clientIDFromRequest reads the client cookie or issues a new one in the
// upgrade response header.
func clientIDFromRequest(r *http.Request) (string, http.Header) {
	if ck, err := r.Cookie(ClientCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		logx.Error("[Gateway] rand.Read error: %v", err)
		return "", nil
	}
	id := hex.EncodeToString(buf)
	ck := &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header := http.Header{}
	header.Add("Set-Cookie", ck.String())
	return id, header
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logx.Warn("[Gateway] Read error on %s: %v", c.ID, err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// enqueue queues data without blocking the room actor; a full buffer drops it.
func (c *Connection) enqueue(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.Send <- data:
	default:
		logx.Warn("[Gateway] Send buffer full for %s, dropping message", c.ID)
	}
}

func (c *Connection) currentRoom() *room.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Room
}

// attach makes r the connection's room and detaches it from the previous one.
func (c *Connection) attach(r *room.Room) {
	c.mu.Lock()
	prev := c.Room
	c.Room = r
	c.mu.Unlock()
	if prev != nil && prev != r {
		c.notifyDisconnect(prev)
	}
}

func (c *Connection) detach(r *room.Room) {
	c.mu.Lock()
	if c.Room == r {
		c.Room = nil
	}
	c.mu.Unlock()
}

func (c *Connection) notifyDisconnect(r *room.Room) {
	if _, err := r.SubmitEvent(room.Event{Type: room.EventDisconnect, ConnID: c.ID}); err != nil {
		logx.Debug("[Gateway] Disconnect of %s from room %s: %v", c.ID, r.Code, err)
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()

	c.closeOnce.Do(func() { close(c.done) })
	if r := c.currentRoom(); r != nil {
		c.detach(r)
		c.notifyDisconnect(r)
	}
	logx.Info("[Gateway] Client disconnected: %s, total: %d", c.ID, total)
}

// sendTo delivers a room message to one connection.
func (g *Gateway) sendTo(connID string, data []byte) {
	g.mu.RLock()
	c := g.connections[connID]
	g.mu.RUnlock()
	if c != nil {
		c.enqueue(data)
	}
}

func (c *Connection) send(t, reqID string, payload any) {
	data, err := codec.Encode(t, reqID, payload)
	if err != nil {
		logx.Error("[Gateway] encode %s failed: %v", t, err)
		return
	}
	c.enqueue(data)
}

func (c *Connection) sendError(reqID string, err error) {
	code := ErrorCode(err)
	if code == CodeInternal {
		logx.Error("[Gateway] %s: %v", c.ID, err)
	}
	c.send(codec.TypeError, reqID, codec.ErrorPayload{Code: code, Message: err.Error()})
}

// ConnectionCount returns the number of open connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

// Close drops every connection and stops all rooms.
func (g *Gateway) Close() {
	g.mu.RLock()
	conns := make([]*Connection, 0, len(g.connections))
	for _, c := range g.connections {
		conns = append(conns, c)
	}
	g.mu.RUnlock()
	for _, c := range conns {
		c.closeOnce.Do(func() { close(c.done) })
	}
	g.lobby.Close()
}
