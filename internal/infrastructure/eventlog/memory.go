package eventlog

import (
	"context"
	"sync"

	"github.com/artulabs/swap-router/internal/domain/entities"
)

// MemoryRecorder keeps the event log in memory. Used in tests and as a
// fallback when no Postgres DSN is configured.
type MemoryRecorder struct {
	mu     sync.RWMutex
	events []entities.Event
}

// NewMemoryRecorder creates an empty in-memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Append adds an event to the log
func (r *MemoryRecorder) Append(ctx context.Context, ev entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// List returns events matching the filter, oldest first
func (r *MemoryRecorder) List(ctx context.Context, f Filter) ([]entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Event, 0, len(r.events))
	for _, ev := range r.events {
		if !f.Matches(ev) {
			continue
		}
		out = append(out, ev)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Len returns the total number of recorded events
func (r *MemoryRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
