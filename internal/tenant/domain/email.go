package domain

import (
	"time"

	"content-commerce/backend/internal/mail"
)

// EmailType selects which email configuration a notification uses.
type EmailType string

const (
	EmailRegister            EmailType = "register"
	EmailResetPassword       EmailType = "reset_password"
	EmailGuestInvitation     EmailType = "guest_invitation"
	EmailMentionNotification EmailType = "mention_notification"
	EmailNewPostNotification EmailType = "new_post_notification"
)

// Valid reports whether t is a known email type.
func (t EmailType) Valid() bool {
	switch t {
	case EmailRegister, EmailResetPassword, EmailGuestInvitation, EmailMentionNotification, EmailNewPostNotification:
		return true
	}
	return false
}

// Scope identifies who owns an email configuration: a tenant or an event.
// Exactly one of the fields is set.
type Scope struct {
	ServiceID string
	EventID   string
}

// ServiceScope returns a tenant-level scope.
func ServiceScope(serviceID string) Scope { return Scope{ServiceID: serviceID} }

// EventScope returns an event-level scope.
func EventScope(eventID string) Scope { return Scope{EventID: eventID} }

// IsEvent reports whether the scope is event-level.
func (s Scope) IsEvent() bool { return s.EventID != "" }

// EmailConfig is a stored email template for one type within one scope.
type EmailConfig struct {
	ID                  string
	Scope               Scope
	Type                EmailType
	Sender              string
	Subject             string
	HTMLTemplate        string
	Link                string
	LinkExpirationHours int
	CreatedAt           time.Time
}

// Message builds the outbound message for this configuration.
func (c *EmailConfig) Message(from string, to []string, keys map[string]string) mail.Message {
	return mail.Message{
		From:     from,
		To:       to,
		Subject:  c.Subject,
		HTMLBody: c.HTMLTemplate,
		Keys:     keys,
	}
}
