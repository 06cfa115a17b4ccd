// Package backend verifies store receipts before a purchase is recorded.
package backend

import (
	"context"
	"fmt"
	"sync"

	"content-commerce/backend/internal/buying/domain"
)

// Backend validates a receipt with one store.
type Backend interface {
	IsValidReceipt(ctx context.Context, receipt string) (bool, error)
}

// Registry resolves the backend of a store by name.
type Registry struct {
	mu       sync.RWMutex
	backends map[domain.BackendName]Backend
}

// NewRegistry returns a registry with the dummy backend registered.
func NewRegistry() *Registry {
	return &Registry{backends: map[domain.BackendName]Backend{
		domain.BackendDummy: Dummy{},
	}}
}

// Register adds or replaces the backend for name.
func (r *Registry) Register(name domain.BackendName, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = b
}

// Get returns the backend for name.
func (r *Registry) Get(name domain.BackendName) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("buying: no backend registered for %q", name)
	}
	return b, nil
}

// DummyReceipt is the only receipt the dummy backend accepts.
const DummyReceipt = "dummy_receipt"

// Dummy accepts DummyReceipt and rejects everything else. Used in development.
type Dummy struct{}

// IsValidReceipt reports whether receipt equals DummyReceipt.
func (Dummy) IsValidReceipt(_ context.Context, receipt string) (bool, error) {
	return receipt == DummyReceipt, nil
}
