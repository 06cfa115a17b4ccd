package domain

import (
	"errors"
	"time"
)

// Post is a feed entry. Posts on an event notify its guests.
type Post struct {
	ID        string
	ServiceID string
	EventID   string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Validate checks the fields required before persistence.
func (p *Post) Validate() error {
	if p.ServiceID == "" {
		return errors.New("post service is required")
	}
	if p.AuthorID == "" {
		return errors.New("post author is required")
	}
	if p.Body == "" {
		return errors.New("post body is required")
	}
	return nil
}

// Comment is a reply to a post. MentionIDs are the mentioned users.
type Comment struct {
	ID         string
	PostID     string
	AuthorID   string
	Body       string
	MentionIDs []string
	CreatedAt  time.Time
}

// HasMention reports whether userID is mentioned on the comment.
func (c *Comment) HasMention(userID string) bool {
	for _, id := range c.MentionIDs {
		if id == userID {
			return true
		}
	}
	return false
}
