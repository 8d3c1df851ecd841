package pipeline

import (
	"sync"

	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

// State is the shared reactive input of the pipeline: source text, selected
// dialect, and format options. It is an explicit object passed into the
// pipeline, not a global singleton, with a ping channel that fires on
// every change.
type State struct {
	mu      sync.Mutex
	source  string
	dialect string
	options core.FormatOptions
	changed chan struct{}
}

// NewState creates pipeline state with the given initial dialect and options.
func NewState(dialectName string, opts core.FormatOptions) *State {
	return &State{
		dialect: dialectName,
		options: opts,
		changed: make(chan struct{}, 1),
	}
}

// Snapshot returns a consistent view of the current inputs.
func (s *State) Snapshot() (source, dialectName string, opts core.FormatOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.dialect, s.options
}

// SetSource replaces the source text.
func (s *State) SetSource(source string) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
	s.notify()
}

// SetDialect replaces the selected dialect.
func (s *State) SetDialect(name string) {
	s.mu.Lock()
	s.dialect = name
	s.mu.Unlock()
	s.notify()
}

// SetOptions replaces the format options.
func (s *State) SetOptions(opts core.FormatOptions) {
	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
	s.notify()
}

// Changed returns the ping channel. A full channel means a notification is
// already pending; consumers re-read Snapshot, so pings never carry data.
func (s *State) Changed() <-chan struct{} {
	return s.changed
}

func (s *State) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
