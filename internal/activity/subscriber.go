package activity

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"siteforge/realtime/internal/hub"
	"siteforge/realtime/internal/models"
)

// Channel is the redis pub/sub channel the CRUD services publish activity
// events on. The subscriber turns each one into a notification push.
const Channel = "activity_events"

// Event mirrors what the activity-logging service publishes.
type Event struct {
	UserID    string `json:"userId"`
	ID        string `json:"id"`
	Type      string `json:"type"`
	Action    string `json:"action"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// Subscriber bridges the activity channel to the hub's private user rooms.
type Subscriber struct {
	rdb        *redis.Client
	hub        *hub.Hub
	log        *zap.Logger
	instanceID string
}

func NewSubscriber(rdb *redis.Client, h *hub.Hub, log *zap.Logger) (*Subscriber, error) {
	if h == nil {
		return nil, hub.ErrNotInitialized
	}
	return &Subscriber{
		rdb:        rdb,
		hub:        h,
		log:        log,
		instanceID: uuid.New().String()[:8], // short instance id for logging
	}, nil
}

// Run consumes activity events until the context is cancelled. A bad message
// is logged and skipped; it never stops the loop.
func (s *Subscriber) Run(ctx context.Context) {
	subscriber := s.rdb.Subscribe(ctx, Channel)
	defer subscriber.Close()
	ch := subscriber.Channel()

	s.log.Info("activity subscriber started",
		zap.String("instanceId", s.instanceID),
		zap.String("channel", Channel))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(msg.Payload)
		}
	}
}

func (s *Subscriber) handle(payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		s.log.Warn("dropping unparseable activity event", zap.Error(err))
		return
	}
	if event.UserID == "" {
		s.log.Warn("dropping activity event without userId")
		return
	}

	s.hub.Publish(event.UserID, models.EventNotification, models.Notification{
		ID:        event.ID,
		Type:      event.Type,
		Action:    event.Action,
		Title:     event.Title,
		Timestamp: event.Timestamp,
	})
}
