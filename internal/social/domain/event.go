// Package domain defines events with their guest lists, and the posts and
// comments of the social feed.
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Event gathers guests who log in with credentials listed on the event.
// Guests holds one "email,password" pair per line.
type Event struct {
	ID                string
	ServiceID         string
	Title             string
	IsOpen            bool
	Guests            string
	SendEmailToGuests bool
	Link              string
	CreatedAt         time.Time
}

// Guest is one parsed line of an event's guest list.
type Guest struct {
	Line     int
	Email    string
	Password string
}

var (
	guestEmailRe    = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9._%+-]*@[a-z0-9-]+(\.[a-z0-9-]+)*\.[a-z]{2,}$`)
	guestPasswordRe = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()_+]+$`)
)

// GuestListError lists every malformed guest line.
type GuestListError struct {
	Problems []string
}

func (e *GuestListError) Error() string { return strings.Join(e.Problems, "; ") }

// GuestLines splits the guest list into lines, dropping carriage returns.
func (e *Event) GuestLines() []string {
	g := strings.ReplaceAll(e.Guests, "\r", "")
	if g == "" {
		return nil
	}
	return strings.Split(g, "\n")
}

// ParseGuests validates every line and returns the guests. All problems are
// reported together in a *GuestListError.
func (e *Event) ParseGuests() ([]Guest, error) {
	lines := e.GuestLines()
	guests := make([]Guest, 0, len(lines))
	var problems []string
	for i, line := range lines {
		prefix := fmt.Sprintf("Line: %d::", i+1)
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			problems = append(problems, fmt.Sprintf("%s Wrong line format: %s", prefix, line))
			continue
		}
		email, password := parts[0], parts[1]
		bad := false
		if !guestEmailRe.MatchString(email) {
			problems = append(problems, fmt.Sprintf("%s Wrong email format: %s", prefix, email))
			bad = true
		}
		if !guestPasswordRe.MatchString(password) {
			problems = append(problems, fmt.Sprintf("%s Wrong password format: %s", prefix, password))
			bad = true
		}
		if !bad {
			guests = append(guests, Guest{Line: i + 1, Email: email, Password: password})
		}
	}
	if len(problems) > 0 {
		return nil, &GuestListError{Problems: problems}
	}
	return guests, nil
}

// ValidateGuests reports a *GuestListError when any guest line is malformed.
func (e *Event) ValidateGuests() error {
	_, err := e.ParseGuests()
	return err
}
