// Package notify fans out lightweight notifications to project members.
// Delivery is best-effort: rows are written for later polling and, when
// Redis is configured, an event is published per recipient for live
// delivery. Failures are logged and never reach the caller.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"cairn/api/internal/store"
	"cairn/api/internal/util"

	"github.com/redis/go-redis/v9"
)

// Store is the persistence surface for notification fan-out.
type Store interface {
	ListMembers(ctx context.Context, projectID string) ([]store.ProjectMembership, error)
	CreateNotifications(ctx context.Context, notifications []store.Notification) error
}

type Notifier struct {
	store Store
	// redis is optional; nil disables live publishing.
	redis *redis.Client
}

func New(store Store, redisClient *redis.Client) *Notifier {
	return &Notifier{store: store, redis: redisClient}
}

type event struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Href  string `json:"href,omitempty"`
}

// NotifyMembers creates one notification per project member except the
// actor. Recipient order is unspecified; each row is independent.
func (n *Notifier) NotifyMembers(ctx context.Context, projectID, excludeUserID, kind, title, body, href string) {
	members, err := n.store.ListMembers(ctx, projectID)
	if err != nil {
		log.Printf("notify: list members for %s: %v", projectID, err)
		return
	}

	notifications := make([]store.Notification, 0, len(members))
	for _, member := range members {
		if member.UserID == excludeUserID {
			continue
		}
		notifications = append(notifications, store.Notification{
			ID:     util.NewID("ntf"),
			UserID: member.UserID,
			Kind:   kind,
			Title:  title,
			Body:   body,
			Href:   href,
		})
	}
	if len(notifications) == 0 {
		return
	}

	if err := n.store.CreateNotifications(ctx, notifications); err != nil {
		log.Printf("notify: create notifications for %s: %v", projectID, err)
		return
	}

	n.publish(ctx, notifications)
}

// NotifyUser creates a single notification for one user.
func (n *Notifier) NotifyUser(ctx context.Context, userID, kind, title, body, href string) {
	notifications := []store.Notification{{
		ID:     util.NewID("ntf"),
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
		Href:   href,
	}}
	if err := n.store.CreateNotifications(ctx, notifications); err != nil {
		log.Printf("notify: create notification for %s: %v", userID, err)
		return
	}
	n.publish(ctx, notifications)
}

func (n *Notifier) publish(ctx context.Context, notifications []store.Notification) {
	if n.redis == nil {
		return
	}
	for _, item := range notifications {
		payload, err := json.Marshal(event{
			ID:    item.ID,
			Kind:  item.Kind,
			Title: item.Title,
			Body:  item.Body,
			Href:  item.Href,
		})
		if err != nil {
			log.Printf("notify: encode event %s: %v", item.ID, err)
			continue
		}
		if err := n.redis.Publish(ctx, Channel(item.UserID), payload).Err(); err != nil {
			log.Printf("notify: publish to %s: %v", item.UserID, err)
		}
	}
}

// Channel returns the Redis pub/sub channel carrying a user's live
// notification events.
func Channel(userID string) string {
	return "notify:" + userID
}
