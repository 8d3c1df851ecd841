// Package sink holds the latest committed formatted SQL and republishes it
// to consumers.
//
// Writes are only ever driven by the sequencer's committed outcomes.
// Last-write-wins; no history is retained. Subscribers receive a ping when
// a new value lands and re-query Value; a full channel means the
// subscriber is behind and will catch up on its next read.
package sink

import (
	"sync"

	"github.com/google/uuid"
)

// Target is an editor-style consumer that receives the formatted SQL text
// directly on every commit.
type Target interface {
	SetValue(text string)
}

// Sink stores the current formatted SQL.
type Sink struct {
	mu        sync.RWMutex
	value     string
	hasValue  bool
	listeners map[string]chan struct{}
	targets   []Target
}

// New creates an empty sink.
func New() *Sink {
	return &Sink{
		listeners: make(map[string]chan struct{}),
	}
}

// Set overwrites the held value, pushes it to all targets, and pings all
// subscribers.
func (s *Sink) Set(text string) {
	s.mu.Lock()
	s.value = text
	s.hasValue = true
	targets := append([]Target(nil), s.targets...)
	s.mu.Unlock()

	for _, t := range targets {
		t.SetValue(text)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.listeners {
		select {
		case ch <- struct{}{}:
		default:
			// Channel full, skip (listener will catch up on next read)
		}
	}
}

// Value returns the current value and whether one has been committed yet.
func (s *Sink) Value() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.hasValue
}

// Subscribe registers a listener and returns its id and ping channel.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (s *Sink) Subscribe() (string, <-chan struct{}) {
	id := uuid.NewString()
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.listeners[id] = ch
	s.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Sink) Unsubscribe(id string) {
	s.mu.Lock()
	ch, ok := s.listeners[id]
	if ok {
		delete(s.listeners, id)
	}
	s.mu.Unlock()
	if ok {
		close(ch)
	}
}

// AddTarget registers an editor-style consumer. The current value, if any,
// is pushed immediately.
func (s *Sink) AddTarget(t Target) {
	s.mu.Lock()
	s.targets = append(s.targets, t)
	value, has := s.value, s.hasValue
	s.mu.Unlock()
	if has {
		t.SetValue(value)
	}
}
