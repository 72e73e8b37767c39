package services

import (
	"context"
	"encoding/json"
	"time"
)

// EventPublisher abstracts the message bus used for activity events.
// *mq.Bus satisfies it. A nil publisher disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// PostCreatedEvent is published when a post is created.
type PostCreatedEvent struct {
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	PostType  string    `json:"post_type"`
	ProductID string    `json:"product_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFollowedEvent is published when a follow edge is created.
type UserFollowedEvent struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	FollowedAt  time.Time `json:"followed_at"`
}

// publishEvent marshals and publishes an event. Publishing is best
// effort: a broker failure never fails the originating request.
func publishEvent(ctx context.Context, pub EventPublisher, channel string, event any) {
	if pub == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = pub.Publish(ctx, channel, data, nil)
}
