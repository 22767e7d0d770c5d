package models

import (
	"gorm.io/gorm"
)

// User is the minimal profile the hub reads from the platform's user store.
// The CRUD services own the full record; we only need enough for presence.
type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `gorm:"unique;not null" json:"email"`
}

// Principal is the verified identity attached to a connection after the
// handshake succeeds. Built once at authentication time, immutable after.
type Principal struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

/*** Socket wire format ***/

type Frame struct {
	Event string      `json:"event"` // "auth","auth:ok","join:project","leave:project","chat:typing","presence:update","notification:new","error"
	Data  interface{} `json:"data,omitempty"`
}

const (
	EventAuth         = "auth"
	EventAuthOK       = "auth:ok"
	EventError        = "error"
	EventJoinProject  = "join:project"
	EventLeaveProject = "leave:project"
	EventTyping       = "chat:typing"
	EventPresence     = "presence:update"
	EventNotification = "notification:new"
)

type AuthRequest struct {
	Token string `json:"token"`
}

type ProjectRequest struct {
	ProjectID string `json:"projectId"`
}

type TypingRequest struct {
	ProjectID string `json:"projectId"`
	IsTyping  bool   `json:"isTyping"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type PresenceUpdate struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type TypingBroadcast struct {
	SenderID string `json:"senderId"` // connection id, distinct from userId
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	IsTyping bool   `json:"isTyping"`
}

// Member is one entry in the presence snapshot endpoint response.
type Member struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Notification is the payload pushed to a user's private room when the
// activity collaborator records something on their behalf.
type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Action    string `json:"action"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}
