package mail

import (
	"context"
	"sync"
)

// Delivery is a message recorded by DummySender with its compiled body.
type Delivery struct {
	Message      Message
	CompiledBody string
}

// DummySender records messages instead of sending them.
type DummySender struct {
	mu   sync.Mutex
	sent []Delivery
}

// NewDummySender returns an empty DummySender.
func NewDummySender() *DummySender { return &DummySender{} }

// Send records m.
func (d *DummySender) Send(_ context.Context, m Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, Delivery{Message: m, CompiledBody: m.Compile()})
	return nil
}

// Sent returns a copy of every recorded delivery.
func (d *DummySender) Sent() []Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Delivery(nil), d.sent...)
}
