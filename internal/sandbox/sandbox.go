// Package sandbox executes playground source against a loaded builder
// module and extracts the compiled query.
//
// The source runs in a fresh Starlark thread with fresh globals on every
// call; the only names in scope are the builder module's API. There is no
// ambient host access: print is a no-op and load() is unavailable. Identical
// (module, source) input always yields a byte-identical compiled query.
//
// Completion of a run is bounded by the context: when the context is
// cancelled or its deadline passes, the Starlark thread is cancelled and the
// run fails with an ExecutionError. This is the only defense against
// unbounded user loops; callers should always pass a context with a
// deadline.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/koskimas/kysely-playground-sub001/internal/builder"
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
)

// SourceFilename is the name used for positions in parse errors.
const SourceFilename = "playground.star"

// DefaultTimeout bounds a single execution when the caller's context has no
// deadline of its own.
const DefaultTimeout = 2 * time.Second

// Sandbox executes playground source. It is stateless and safe for
// concurrent use; concurrent runs share nothing.
type Sandbox struct {
	timeout time.Duration
	logger  *slog.Logger
}

// Config holds sandbox configuration.
type Config struct {
	// Timeout bounds a single execution. Zero means DefaultTimeout.
	Timeout time.Duration
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a sandbox.
func New(cfg Config) *Sandbox {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sandbox{timeout: timeout, logger: logger}
}

// Compile parses and executes source against the module's builder API and
// extracts the single resulting query. Failures are classified as
// *ParseError, *ExecutionError, or ErrNoQueryProduced.
func (s *Sandbox) Compile(ctx context.Context, m *builder.Module, source string) (*core.CompiledQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	thread := &starlark.Thread{
		Name: "playground",
		Print: func(_ *starlark.Thread, _ string) {
			// Sandboxed execution has no output channel.
		},
	}

	// Cancel the thread when the context ends. The watchdog exits once
	// execution finishes so it cannot outlive the run.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel("context cancelled")
		case <-done:
		}
	}()

	globals, err := starlark.ExecFile(thread, SourceFilename, source, m.Predeclared()) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, s.classify(ctx, err)
	}

	compilable, err := extractQuery(globals)
	if err != nil {
		return nil, err
	}

	query, err := compilable.CompileQuery()
	if err != nil {
		return nil, &ExecutionError{Msg: err.Error()}
	}

	s.logger.Debug("compiled query",
		"dialect", m.Dialect().Name,
		"params", len(query.Parameters))
	return query, nil
}

// classify maps a Starlark error to the sandbox taxonomy.
func (s *Sandbox) classify(ctx context.Context, err error) error {
	// Syntax errors from the scanner/parser carry a position.
	var synErr syntax.Error
	if errors.As(err, &synErr) {
		return &ParseError{
			File: synErr.Pos.Filename(),
			Line: synErr.Pos.Line,
			Col:  synErr.Pos.Col,
			Msg:  synErr.Msg,
		}
	}

	// Static resolution errors (undefined names, etc.) are also
	// pre-execution and positioned.
	var resErrs resolve.ErrorList
	if errors.As(err, &resErrs) && len(resErrs) > 0 {
		first := resErrs[0]
		return &ParseError{
			File: first.Pos.Filename(),
			Line: first.Pos.Line,
			Col:  first.Pos.Col,
			Msg:  first.Msg,
		}
	}

	// A cancelled thread surfaces as an EvalError; report the timeout
	// rather than the internal cancellation message.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ExecutionError{Msg: fmt.Sprintf("execution exceeded %s", s.timeout)}
	}

	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return &ExecutionError{Msg: evalErr.Msg}
	}

	return &ExecutionError{Msg: err.Error()}
}

// extractQuery finds the query value in the executed module's globals.
// A global named "query" wins; otherwise a single builder value at top
// level is accepted.
func extractQuery(globals starlark.StringDict) (builder.Compilable, error) {
	if v, ok := globals["query"]; ok {
		c, ok := v.(builder.Compilable)
		if !ok {
			return nil, fmt.Errorf("%w (got %s)", ErrNoQueryProduced, v.Type())
		}
		return c, nil
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	var found builder.Compilable
	for _, name := range names {
		if c, ok := globals[name].(builder.Compilable); ok {
			if found != nil {
				return nil, fmt.Errorf("%w (multiple builders, none named query)", ErrNoQueryProduced)
			}
			found = c
		}
	}
	if found == nil {
		return nil, ErrNoQueryProduced
	}
	return found, nil
}
