// Package pipeline wires the playground's live compile path: an edit to
// source, dialect, or options mints a run token, the loader resolves the
// dialect's builder module, the sandbox compiles the source against it, the
// formatter renders the result, and the sequencer commits the outcome to
// the sink only if the token is still current.
//
// Runs overlap freely: each edit triggers a new run without waiting for
// prior ones, and completion order is unrelated to issuance order. The
// sequencer's token check is the only thing that keeps the visible result
// pinned to the most recent trigger.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/koskimas/kysely-playground-sub001/internal/loader"
	"github.com/koskimas/kysely-playground-sub001/internal/sandbox"
	"github.com/koskimas/kysely-playground-sub001/internal/sequencer"
	"github.com/koskimas/kysely-playground-sub001/internal/sink"
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/format"
)

// Pipeline runs the compile+format path for one editing session.
type Pipeline struct {
	state   *State
	loader  *loader.Loader
	sandbox *sandbox.Sandbox
	seq     *sequencer.Sequencer
	sink    *sink.Sink
	logger  *slog.Logger
}

// Config holds pipeline configuration.
type Config struct {
	// Dialect is the initially selected dialect.
	Dialect string
	// Options are the initial format options; zero value means defaults.
	Options core.FormatOptions
	// Loader resolves builder modules; required.
	Loader *loader.Loader
	// Sandbox executes source; required.
	Sandbox *sandbox.Sandbox
	// Sink receives committed results; created if nil.
	Sink *sink.Sink
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	snk := cfg.Sink
	if snk == nil {
		snk = sink.New()
	}
	opts := cfg.Options
	if opts == (core.FormatOptions{}) {
		opts = core.DefaultFormatOptions()
	}
	return &Pipeline{
		state:   NewState(cfg.Dialect, opts),
		loader:  cfg.Loader,
		sandbox: cfg.Sandbox,
		seq:     sequencer.New(snk, logger),
		sink:    snk,
		logger:  logger,
	}
}

// State returns the shared reactive state.
func (p *Pipeline) State() *State { return p.state }

// Sink returns the result sink.
func (p *Pipeline) Sink() *sink.Sink { return p.sink }

// Sequencer returns the run sequencer.
func (p *Pipeline) Sequencer() *sequencer.Sequencer { return p.seq }

// SetSource updates the source text and triggers a run.
func (p *Pipeline) SetSource(ctx context.Context, source string) sequencer.Token {
	p.state.SetSource(source)
	return p.triggerRun(ctx)
}

// SetDialect updates the selected dialect and triggers a run.
func (p *Pipeline) SetDialect(ctx context.Context, name string) sequencer.Token {
	p.state.SetDialect(name)
	return p.triggerRun(ctx)
}

// SetOptions updates the format options and triggers a run.
func (p *Pipeline) SetOptions(ctx context.Context, opts core.FormatOptions) sequencer.Token {
	p.state.SetOptions(opts)
	return p.triggerRun(ctx)
}

// Render runs the pipeline synchronously against the current state and
// returns the outcome. The run still goes through the sequencer, so a
// concurrent edit can supersede it.
func (p *Pipeline) Render(ctx context.Context) (string, error) {
	token := p.seq.Trigger()
	out := p.execute(ctx)
	p.seq.Complete(token, out)
	return out.SQL, out.Err
}

// triggerRun mints a token and runs the pipeline in a new goroutine.
func (p *Pipeline) triggerRun(ctx context.Context) sequencer.Token {
	token := p.seq.Trigger()
	go func() {
		out := p.execute(ctx)
		p.seq.Complete(token, out)
	}()
	return token
}

// execute performs one load→compile→format pass over a snapshot of the
// state. All failures are caught here, at the run boundary; none escape to
// the trigger site.
func (p *Pipeline) execute(ctx context.Context) sequencer.Outcome {
	source, dialectName, opts := p.state.Snapshot()

	module, err := p.loader.Load(ctx, dialectName)
	if err != nil {
		return sequencer.Outcome{Err: err}
	}

	query, err := p.sandbox.Compile(ctx, module, source)
	if err != nil {
		return sequencer.Outcome{Err: err}
	}

	// Format with the module's own dialect: a query is never formatted
	// against a dialect other than the one that produced it.
	sql, err := format.Format(query, module.Dialect(), opts)
	if err != nil {
		return sequencer.Outcome{Err: err}
	}

	p.logger.Debug("run completed", "dialect", dialectName, "bytes", len(sql))
	return sequencer.Outcome{SQL: sql}
}
