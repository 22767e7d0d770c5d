package hub

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"siteforge/realtime/internal/models"
)

type frameCapture struct {
	mu     sync.Mutex
	frames []models.Frame
}

func newFrameCapture() *frameCapture { return &frameCapture{} }

func (c *frameCapture) hook(frame models.Frame) {
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
}

func (c *frameCapture) list() []models.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func hookClient(userID string) (*Client, *frameCapture) {
	c := NewClient(nil, models.Principal{UserID: userID, Name: "User " + userID})
	capture := newFrameCapture()
	c.SetSendHook(capture.hook)
	return c, capture
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c, _ := hookClient("1")

	assert.Equal(t, 1, r.Join("project:abc", c))
	assert.Equal(t, 1, r.Join("project:abc", c), "duplicate join must not grow the room")
	assert.Len(t, r.Members("project:abc"), 1)
}

func TestRegistryLeaveUnknownRoomIsNoop(t *testing.T) {
	r := NewRegistry()
	c, _ := hookClient("1")

	r.Leave("project:never-joined", c)
	assert.Empty(t, r.Members("project:never-joined"))
}

func TestRegistryLeaveDropsEmptyRoom(t *testing.T) {
	r := NewRegistry()
	c1, _ := hookClient("1")
	c2, _ := hookClient("2")

	r.Join("project:abc", c1)
	r.Join("project:abc", c2)
	r.Leave("project:abc", c1)
	assert.Len(t, r.Members("project:abc"), 1)

	r.Leave("project:abc", c2)
	assert.Empty(t, r.Members("project:abc"))
	// leaving again after GC must still be fine
	r.Leave("project:abc", c2)
}

func TestRegistryMembersUnknownRoomIsEmptyNotNilPanic(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Members("user:42"))
}

func TestRegistryBroadcastExcludesSender(t *testing.T) {
	r := NewRegistry()
	sender, senderCap := hookClient("1")
	peer, peerCap := hookClient("2")
	r.Join("project:abc", sender)
	r.Join("project:abc", peer)

	r.Broadcast("project:abc", models.Frame{Event: "chat:typing"}, sender)

	assert.Empty(t, senderCap.list(), "sender must never receive its own broadcast")
	assert.Len(t, peerCap.list(), 1)
}

func TestRegistryBroadcastToEmptyRoomIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Broadcast("project:nobody-home", models.Frame{Event: "presence:update"}, nil)
}

func TestRegistryConcurrentJoinsAllLand(t *testing.T) {
	r := NewRegistry()
	const n = 32

	clients := make([]*Client, n)
	for i := range clients {
		clients[i], _ = hookClient(fmt.Sprintf("%d", i))
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			r.Join("project:busy", c)
		}(c)
	}
	wg.Wait()

	assert.Len(t, r.Members("project:busy"), n, "concurrent joins are set-adds, none may be lost")
}

func TestRoomKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserRoom("42"))
	assert.Equal(t, "project:abc", ProjectRoom("abc"))
}
