package sequencer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koskimas/kysely-playground-sub001/internal/sink"
)

func TestInitialStateIsIdle(t *testing.T) {
	s := New(sink.New(), nil)

	kind, token := s.State()
	assert.Equal(t, Idle, kind)
	assert.Equal(t, Token(0), token)
	assert.False(t, s.IsLoading())

	_, ok := s.Outcome()
	assert.False(t, ok)
}

func TestTriggerMintsIncreasingTokens(t *testing.T) {
	s := New(sink.New(), nil)

	t1 := s.Trigger()
	t2 := s.Trigger()
	t3 := s.Trigger()

	assert.Less(t, t1, t2)
	assert.Less(t, t2, t3)
	assert.True(t, s.IsLoading())
}

func TestCompleteCommitsToSink(t *testing.T) {
	snk := sink.New()
	s := New(snk, nil)

	token := s.Trigger()
	committed := s.Complete(token, Outcome{SQL: "select 1"})
	assert.True(t, committed)

	kind, _ := s.State()
	assert.Equal(t, Settled, kind)
	assert.False(t, s.IsLoading())

	v, ok := snk.Value()
	require.True(t, ok)
	assert.Equal(t, "select 1", v)

	out, ok := s.Outcome()
	require.True(t, ok)
	assert.Equal(t, "select 1", out.SQL)
	assert.NoError(t, out.Err)
}

// A completion for a superseded token is discarded with no side effects.
func TestStaleCompletionDiscarded(t *testing.T) {
	snk := sink.New()
	s := New(snk, nil)

	old := s.Trigger()
	current := s.Trigger()

	assert.False(t, s.Complete(old, Outcome{SQL: "stale"}))
	assert.True(t, s.IsLoading(), "stale completion must not settle the run")
	_, ok := snk.Value()
	assert.False(t, ok, "stale completion must not reach the sink")

	assert.True(t, s.Complete(current, Outcome{SQL: "fresh"}))
	v, ok := snk.Value()
	require.True(t, ok)
	assert.Equal(t, "fresh", v)
}

// Out-of-order completions: the older run finishing after the newer one is
// ignored even though the sequencer has already settled.
func TestLateCompletionAfterSettle(t *testing.T) {
	snk := sink.New()
	s := New(snk, nil)

	old := s.Trigger()
	current := s.Trigger()

	require.True(t, s.Complete(current, Outcome{SQL: "fresh"}))
	assert.False(t, s.Complete(old, Outcome{SQL: "stale"}))

	v, ok := snk.Value()
	require.True(t, ok)
	assert.Equal(t, "fresh", v)
}

// Failed runs settle without touching the sink: the previous result stays
// visible.
func TestErrorOutcomeRetainsSink(t *testing.T) {
	snk := sink.New()
	s := New(snk, nil)

	token := s.Trigger()
	require.True(t, s.Complete(token, Outcome{SQL: "select 1"}))

	token = s.Trigger()
	require.True(t, s.Complete(token, Outcome{Err: errors.New("parse failed")}))

	kind, _ := s.State()
	assert.Equal(t, Settled, kind)

	out, ok := s.Outcome()
	require.True(t, ok)
	assert.Error(t, out.Err)

	v, ok := snk.Value()
	require.True(t, ok)
	assert.Equal(t, "select 1", v, "sink must retain the previous committed value")
}

func TestCompleteSameTokenTwice(t *testing.T) {
	s := New(sink.New(), nil)

	token := s.Trigger()
	assert.True(t, s.Complete(token, Outcome{SQL: "one"}))
	assert.False(t, s.Complete(token, Outcome{SQL: "two"}), "a settled token cannot commit again")
}

func TestStateKindString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "settled", Settled.String())
}
