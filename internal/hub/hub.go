package hub

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"siteforge/realtime/internal/metrics"
	"siteforge/realtime/internal/models"
)

// ErrNotInitialized is returned by collaborator constructors handed a nil
// hub. Publishing before the hub exists is a startup-ordering bug, not a
// runtime condition to recover from.
var ErrNotInitialized = errors.New("realtime hub not initialized")

// Hub owns connection lifecycle and fan-out. Every authenticated connection
// is auto-subscribed to its private user room; project rooms come and go on
// client request. All state is in-memory and process-local: a client that
// reconnects simply misses whatever was sent while it was away.
type Hub struct {
	log      *zap.Logger
	registry *Registry
}

func New(log *zap.Logger) *Hub {
	return &Hub{log: log, registry: NewRegistry()}
}

// Register moves an authenticated client into the ACTIVE state by joining it
// to its private user room. Never a client-requested action.
func (h *Hub) Register(c *Client) {
	room := UserRoom(c.Principal.UserID)
	c.trackJoin(room)
	h.registry.Join(room, c)
	metrics.ActiveConnections.Inc()
	h.log.Info("client connected",
		zap.String("connectionId", c.ID),
		zap.String("userId", c.Principal.UserID))
}

// Disconnect releases every room the client holds, private room included.
// It must run on every disconnect path, clean or abrupt, so rooms never
// accumulate stale members. Remaining project-room peers get an offline
// presence update.
func (h *Hub) Disconnect(c *Client) {
	for _, room := range c.heldRooms() {
		c.trackLeave(room)
		h.registry.Leave(room, c)
		if strings.HasPrefix(room, "project:") {
			h.broadcastPresence(room, c.Principal, models.StatusOffline, nil)
		}
	}
	metrics.ActiveConnections.Dec()
	h.log.Info("client disconnected",
		zap.String("connectionId", c.ID),
		zap.String("userId", c.Principal.UserID))
}

// JoinProject subscribes the client to the project room and announces its
// presence to the room, joiner included, so a client sees its own confirmed
// presence.
func (h *Hub) JoinProject(c *Client, projectID string) {
	room := ProjectRoom(projectID)
	if !c.trackJoin(room) {
		return // already a member, nothing to announce
	}
	count := h.registry.Join(room, c)
	if count == 1 {
		h.log.Debug("project room opened", zap.String("projectId", projectID))
	}
	h.broadcastPresence(room, c.Principal, models.StatusOnline, nil)
}

// LeaveProject unsubscribes the client and tells the remaining members it
// went offline. Leaving a room the client never joined is a no-op.
func (h *Hub) LeaveProject(c *Client, projectID string) {
	room := ProjectRoom(projectID)
	if !c.trackLeave(room) {
		return
	}
	h.registry.Leave(room, c)
	h.broadcastPresence(room, c.Principal, models.StatusOffline, nil)
}

// Typing relays a typing indicator to the client's project-room peers.
// The sender is always excluded: typing indicators never echo back.
func (h *Hub) Typing(c *Client, projectID string, isTyping bool) {
	room := ProjectRoom(projectID)
	metrics.EventsTotal.WithLabelValues(models.EventTyping).Inc()
	h.registry.Broadcast(room, models.Frame{
		Event: models.EventTyping,
		Data: models.TypingBroadcast{
			SenderID: c.ID,
			UserID:   c.Principal.UserID,
			Name:     c.Principal.Name,
			IsTyping: isTyping,
		},
	}, c)
}

// Publish fans an event out to every live connection in the user's private
// room: zero, one, or many (multiple tabs). With nobody connected it is a
// silent no-op; there is no queue and no replay.
func (h *Hub) Publish(userID, event string, payload any) {
	metrics.EventsTotal.WithLabelValues(event).Inc()
	h.registry.Broadcast(UserRoom(userID), models.Frame{Event: event, Data: payload}, nil)
}

// ProjectMembers reports who is currently in a project room, for the
// presence snapshot endpoint.
func (h *Hub) ProjectMembers(projectID string) []models.Member {
	clients := h.registry.Members(ProjectRoom(projectID))
	out := make([]models.Member, 0, len(clients))
	for _, c := range clients {
		out = append(out, models.Member{UserID: c.Principal.UserID, Name: c.Principal.Name})
	}
	return out
}

func (h *Hub) broadcastPresence(room string, p models.Principal, status string, excluding *Client) {
	metrics.EventsTotal.WithLabelValues(models.EventPresence).Inc()
	h.registry.Broadcast(room, models.Frame{
		Event: models.EventPresence,
		Data:  models.PresenceUpdate{UserID: p.UserID, Name: p.Name, Status: status},
	}, excluding)
}
