package sinks

import (
	"context"
	"sync"

	"github.com/razor303Jc/Job-search-sub002/internal/progress"
)

// MemorySink records events in order for inspection in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []progress.Event
	closed bool
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Consume appends the event to the in-order log.
func (s *MemorySink) Consume(_ context.Context, evt progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

// Close marks the sink closed. Events remain readable afterwards.
func (s *MemorySink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Events returns a copy of everything consumed so far.
func (s *MemorySink) Events() []progress.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]progress.Event(nil), s.events...)
}

// Closed reports whether Close has been called.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
