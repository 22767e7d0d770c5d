package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"siteforge/realtime/internal/models"
)

// writeWait bounds a single frame write so one backpressured socket cannot
// stall a broadcast to the rest of a room.
const writeWait = 10 * time.Second

// Client is one live socket connection with its verified identity and the
// set of rooms it currently belongs to.
type Client struct {
	ID        string
	Principal models.Principal
	Conn      *websocket.Conn

	mu   sync.Mutex
	hook func(models.Frame)

	roomsMu sync.Mutex
	rooms   map[string]struct{}
}

func NewClient(conn *websocket.Conn, principal models.Principal) *Client {
	return &Client{
		ID:        uuid.New().String(),
		Principal: principal,
		Conn:      conn,
		rooms:     make(map[string]struct{}),
	}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.Frame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *Client) Send(frame models.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.Conn == nil {
		return
	}
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.Conn.WriteJSON(frame)
}

// trackJoin records room membership on the client so disconnect cleanup is
// exact. Returns false if the client was already a member.
func (c *Client) trackJoin(room string) bool {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	if _, ok := c.rooms[room]; ok {
		return false
	}
	c.rooms[room] = struct{}{}
	return true
}

// trackLeave returns false if the client never joined the room.
func (c *Client) trackLeave(room string) bool {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	if _, ok := c.rooms[room]; !ok {
		return false
	}
	delete(c.rooms, room)
	return true
}

func (c *Client) heldRooms() []string {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		out = append(out, room)
	}
	return out
}
