// Package loader obtains and caches builder modules per dialect.
//
// Loading is asynchronous from the pipeline's point of view: callers invoke
// Load from their run goroutines. Concurrent loads for the same uncached
// dialect coalesce into a single supply call; each dialect's cache slot is
// independent, so a failure loading one dialect never disturbs another's
// cached module. A failed load leaves the slot empty for retry on the next
// trigger.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/koskimas/kysely-playground-sub001/internal/builder"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"
)

// Supplier produces the builder module for a dialect. The supply mechanism
// is an opaque external contract; the default supplier builds modules from
// the dialect registry.
type Supplier func(ctx context.Context, dialectName string) (*builder.Module, error)

// ModuleUnavailableError reports a failed module load for one dialect.
type ModuleUnavailableError struct {
	Dialect string
	Err     error
}

func (e *ModuleUnavailableError) Error() string {
	return fmt.Sprintf("module unavailable for dialect %q: %v", e.Dialect, e.Err)
}

func (e *ModuleUnavailableError) Unwrap() error {
	return e.Err
}

// RegistrySupplier builds modules from the global dialect registry.
func RegistrySupplier(_ context.Context, dialectName string) (*builder.Module, error) {
	d, ok := dialect.Get(dialectName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dialect.ErrUnknownDialect, dialectName)
	}
	return builder.NewModule(d), nil
}

// Loader caches builder modules keyed by dialect name.
type Loader struct {
	mu     sync.RWMutex
	cache  map[string]*builder.Module
	group  singleflight.Group
	supply Supplier
	logger *slog.Logger
}

// Config holds loader configuration.
type Config struct {
	// Supply produces modules; defaults to RegistrySupplier.
	Supply Supplier
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a loader.
func New(cfg Config) *Loader {
	supply := cfg.Supply
	if supply == nil {
		supply = RegistrySupplier
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		cache:  make(map[string]*builder.Module),
		supply: supply,
		logger: logger,
	}
}

// Load returns the builder module for a dialect, supplying and caching it
// on first use. Concurrent calls for the same uncached dialect share one
// supply call. Failure surfaces as *ModuleUnavailableError and leaves the
// cache slot empty.
func (l *Loader) Load(ctx context.Context, dialectName string) (*builder.Module, error) {
	l.mu.RLock()
	m, ok := l.cache[dialectName]
	l.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, shared := l.group.Do(dialectName, func() (any, error) {
		// Re-check under the group: a prior flight may have populated
		// the slot between the read above and entering Do.
		l.mu.RLock()
		cached, ok := l.cache[dialectName]
		l.mu.RUnlock()
		if ok {
			return cached, nil
		}

		m, err := l.supply(ctx, dialectName)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cache[dialectName] = m
		l.mu.Unlock()
		return m, nil
	})
	if err != nil {
		l.logger.Warn("module load failed", "dialect", dialectName, "error", err)
		return nil, &ModuleUnavailableError{Dialect: dialectName, Err: err}
	}

	l.logger.Debug("module loaded", "dialect", dialectName, "shared", shared)
	return v.(*builder.Module), nil
}

// Cached reports whether a module is cached for the dialect.
func (l *Loader) Cached(dialectName string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[dialectName]
	return ok
}

// Evict drops a dialect's cached module. Used by tests and by callers that
// want to force a fresh supply.
func (l *Loader) Evict(dialectName string) {
	l.mu.Lock()
	delete(l.cache, dialectName)
	l.mu.Unlock()
}
