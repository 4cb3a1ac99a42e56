package audit

import (
	"context"
	"sync"
)

// Sink persists batches of audit events. Writes come from a single worker
// goroutine; implementations need not be safe for concurrent Write calls.
type Sink interface {
	Name() string
	Write(ctx context.Context, events []Event) error
}

const memorySinkCapacity = 1024

// MemorySink retains recent events in memory. It backs development mode when
// no broker is configured and lets tests inspect exactly what was recorded.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Name() string { return "memory" }

// Write appends the batch, trimming the oldest entries past capacity.
func (s *MemorySink) Write(_ context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, events...)
	if excess := len(s.events) - memorySinkCapacity; excess > 0 {
		s.events = s.events[excess:]
	}
	return nil
}

// Events returns a copy of everything recorded, oldest first.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByAction returns recorded events matching the action, oldest first.
func (s *MemorySink) ByAction(action Action) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
