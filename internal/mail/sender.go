package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownSender is returned by Registry.Get for an unregistered sender name.
var ErrUnknownSender = errors.New("mail: unknown sender")

// Sender names stored on email configurations.
const (
	SenderDummy    = "dummy"
	SenderSendGrid = "sendgrid"
)

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Registry resolves a Sender by the name stored on an email configuration.
type Registry struct {
	mu       sync.RWMutex
	senders  map[string]Sender
	fallback string
}

// NewRegistry returns a registry whose Get falls back to the sender named
// fallback when asked for an empty name.
func NewRegistry(fallback string) *Registry {
	return &Registry{senders: make(map[string]Sender), fallback: fallback}
}

// Register adds or replaces the sender for name.
func (r *Registry) Register(name string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[name] = s
}

// Get returns the sender for name, or the fallback sender when name is empty.
func (r *Registry) Get(name string) (Sender, error) {
	if name == "" {
		name = r.fallback
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSender, name)
	}
	return s, nil
}
