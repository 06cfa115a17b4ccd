// Package domain defines the opaque API auth token issued once per user.
package domain

import "time"

// Token is a user's API key. Each user has at most one.
type Token struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
