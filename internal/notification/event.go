// Package notification carries post notifications between the API server and
// the worker over Kafka.
package notification

import (
	"encoding/json"
	"errors"
	"time"
)

// TypePostPublished is the type of PostPublished messages.
const TypePostPublished = "post.published"

// PostPublished is emitted when a post is published on an event. The worker
// notifies the event's guests.
type PostPublished struct {
	Type        string    `json:"type"`
	PostID      string    `json:"post_id"`
	EventID     string    `json:"event_id"`
	ServiceID   string    `json:"service_id"`
	PublishedAt time.Time `json:"published_at"`
}

// NewPostPublished returns a PostPublished stamped with the current time.
func NewPostPublished(postID, eventID, serviceID string) PostPublished {
	return PostPublished{
		Type:        TypePostPublished,
		PostID:      postID,
		EventID:     eventID,
		ServiceID:   serviceID,
		PublishedAt: time.Now().UTC(),
	}
}

// Decode parses and validates a PostPublished message.
func Decode(b []byte) (PostPublished, error) {
	var ev PostPublished
	if err := json.Unmarshal(b, &ev); err != nil {
		return PostPublished{}, err
	}
	if ev.Type != TypePostPublished {
		return PostPublished{}, errors.New("notification: unexpected message type " + ev.Type)
	}
	if ev.PostID == "" {
		return PostPublished{}, errors.New("notification: post_id is required")
	}
	return ev, nil
}
