// Package inflight rejects a user action while an identical one is still
// waiting for the store.
package inflight

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInFlight is returned when the same operation on the same entity is already outstanding.
var ErrInFlight = errors.New("operation already in flight")

// Key identifies an outstanding operation.
type Key struct {
	Entity string
	Op     string
}

func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Op, k.Entity) }

// Guard tracks outstanding operations by key.
type Guard struct {
	mu     sync.Mutex
	active map[Key]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[Key]struct{})}
}

// Do runs fn unless key is already active, in which case it returns
// ErrInFlight without calling fn. The key is released when fn returns.
func (g *Guard) Do(key Key, fn func() error) error {
	g.mu.Lock()
	if _, busy := g.active[key]; busy {
		g.mu.Unlock()
		return fmt.Errorf("%s: %w", key, ErrInFlight)
	}
	g.active[key] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.active, key)
		g.mu.Unlock()
	}()
	return fn()
}

// Active reports whether key is outstanding.
func (g *Guard) Active(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[key]
	return ok
}

// Len returns the number of outstanding operations.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}

// Reset forgets every outstanding key. Used when a session is torn down.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = make(map[Key]struct{})
}
