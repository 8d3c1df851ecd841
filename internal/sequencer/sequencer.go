// Package sequencer coordinates pipeline runs triggered by edits.
//
// Every trigger mints a new monotonically increasing token and supersedes
// whatever was running before it. Prior runs are not aborted: they are
// left to complete and their outcomes discarded when their token is no
// longer current. This is deliberately "ignore stale completions", not
// preemptive cancellation: the visible result always corresponds to the
// most recently issued trigger, never to the most recent completion.
package sequencer

import (
	"log/slog"
	"sync"

	"github.com/koskimas/kysely-playground-sub001/internal/sink"
)

// Token identifies one run. Tokens are minted in increasing order and
// compared only for equality at completion time.
type Token uint64

// StateKind enumerates the sequencer states.
type StateKind int

const (
	// Idle means no run has been triggered yet.
	Idle StateKind = iota
	// Running means the latest triggered run has not completed.
	Running
	// Settled means the latest triggered run has committed its outcome.
	Settled
)

// String returns the state name.
func (k StateKind) String() string {
	switch k {
	case Running:
		return "running"
	case Settled:
		return "settled"
	default:
		return "idle"
	}
}

// Outcome is the result of one run: formatted SQL on success, the run's
// error otherwise.
type Outcome struct {
	SQL string
	Err error
}

// Sequencer is the per-pipeline state machine.
type Sequencer struct {
	mu      sync.Mutex
	kind    StateKind
	token   Token // latest minted token
	outcome Outcome

	sink   *sink.Sink
	logger *slog.Logger
}

// New creates a sequencer committing successful outcomes to the given sink.
func New(s *sink.Sink, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sequencer{sink: s, logger: logger}
}

// Trigger mints a new token and moves to Running. Any in-flight run is
// superseded; its completion will be discarded.
func (s *Sequencer) Trigger() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.kind = Running
	s.logger.Debug("run triggered", "token", uint64(s.token))
	return s.token
}

// Complete records a run's outcome. If the token is still current the
// sequencer settles and, on success, commits the SQL to the sink; a stale
// token is discarded with no observable side effect. Returns whether the
// outcome was committed.
func (s *Sequencer) Complete(t Token, out Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != Running || t != s.token {
		s.logger.Debug("stale completion discarded", "token", uint64(t))
		return false
	}
	s.kind = Settled
	s.outcome = out

	// Commit under the lock so a stale completion racing with a newer one
	// can never reorder writes to the sink.
	if out.Err == nil {
		s.sink.Set(out.SQL)
	}
	s.logger.Debug("run settled", "token", uint64(t), "error", out.Err)
	return true
}

// IsLoading reports whether the latest triggered run is still in flight.
func (s *Sequencer) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind == Running
}

// State returns the current state kind and the latest minted token.
func (s *Sequencer) State() (StateKind, Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind, s.token
}

// Outcome returns the last settled outcome. The boolean is false until the
// first settlement.
func (s *Sequencer) Outcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.kind == Settled
}
