package hub

import (
	"sync"

	"siteforge/realtime/internal/models"
)

// Room key helpers. Private rooms are auto-joined at registration; project
// rooms are joined and left on explicit client request.
func UserRoom(userID string) string       { return "user:" + userID }
func ProjectRoom(projectID string) string { return "project:" + projectID }

// Registry maps room keys to the set of clients subscribed to them. It is
// the single source of truth for who hears what. Unknown rooms and absent
// members are normal states, never errors.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds the client to the room (idempotent) and returns the member count
// after the add, so callers can tell a first joiner from a rejoin.
func (r *Registry) Join(room string, c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
	return len(members)
}

// Leave removes the client from the room (idempotent). An emptied room is
// dropped from the map; nobody observes the difference.
func (r *Registry) Leave(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Members returns a snapshot of the room's current members. Empty, not an
// error, for a room nobody is in.
func (r *Registry) Members(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// Broadcast fans the frame out to every member of the room except
// `excluding` (nil to include everyone). A room with no members is a no-op.
// Sends happen outside the registry lock so a stuck socket cannot block
// join/leave traffic; per-client write deadlines keep one slow member from
// starving the rest.
func (r *Registry) Broadcast(room string, frame models.Frame, excluding *Client) {
	for _, c := range r.Members(room) {
		if c == excluding {
			continue
		}
		c.Send(frame)
	}
}
