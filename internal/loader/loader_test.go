package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koskimas/kysely-playground-sub001/internal/builder"
	"github.com/koskimas/kysely-playground-sub001/pkg/core"
	"github.com/koskimas/kysely-playground-sub001/pkg/dialect"

	_ "github.com/koskimas/kysely-playground-sub001/pkg/dialects/postgres"
)

func testSupplier(calls *atomic.Int64, block chan struct{}) Supplier {
	return func(_ context.Context, dialectName string) (*builder.Module, error) {
		calls.Add(1)
		if block != nil {
			<-block
		}
		d := dialect.NewDialect(dialectName).
			Identifiers(`"`, `"`, `""`, core.NormLowercase).
			Build()
		return builder.NewModule(d), nil
	}
}

func TestLoadCachesModule(t *testing.T) {
	var calls atomic.Int64
	l := New(Config{Supply: testSupplier(&calls, nil)})

	first, err := l.Load(context.Background(), "postgres")
	require.NoError(t, err)
	second, err := l.Load(context.Background(), "postgres")
	require.NoError(t, err)

	assert.Same(t, first, second, "cached module must be reused")
	assert.Equal(t, int64(1), calls.Load())
	assert.True(t, l.Cached("postgres"))
}

// Concurrent loads for the same uncached dialect coalesce into one supply
// call.
func TestLoadSingleFlight(t *testing.T) {
	var calls atomic.Int64
	block := make(chan struct{})
	l := New(Config{Supply: testSupplier(&calls, block)})

	const n = 16
	var wg sync.WaitGroup
	results := make([]*builder.Module, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := l.Load(context.Background(), "postgres")
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}

	close(block)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "concurrent loads must share one supply call")
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLoadFailureLeavesSlotEmpty(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	supply := func(ctx context.Context, name string) (*builder.Module, error) {
		if fail.Load() {
			return nil, errors.New("registry offline")
		}
		return testSupplier(new(atomic.Int64), nil)(ctx, name)
	}
	l := New(Config{Supply: supply})

	_, err := l.Load(context.Background(), "postgres")
	var unavailable *ModuleUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "postgres", unavailable.Dialect)
	assert.False(t, l.Cached("postgres"), "failed load must not cache")

	// The next trigger retries and succeeds.
	fail.Store(false)
	m, err := l.Load(context.Background(), "postgres")
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.True(t, l.Cached("postgres"))
}

// One dialect's failure never disturbs another's cached module.
func TestLoadPerDialectIndependence(t *testing.T) {
	supply := func(ctx context.Context, name string) (*builder.Module, error) {
		if name == "broken" {
			return nil, errors.New("no such module")
		}
		return testSupplier(new(atomic.Int64), nil)(ctx, name)
	}
	l := New(Config{Supply: supply})

	good, err := l.Load(context.Background(), "postgres")
	require.NoError(t, err)

	_, err = l.Load(context.Background(), "broken")
	require.Error(t, err)

	again, err := l.Load(context.Background(), "postgres")
	require.NoError(t, err)
	assert.Same(t, good, again)
}

func TestEvict(t *testing.T) {
	var calls atomic.Int64
	l := New(Config{Supply: testSupplier(&calls, nil)})

	_, err := l.Load(context.Background(), "postgres")
	require.NoError(t, err)
	l.Evict("postgres")
	assert.False(t, l.Cached("postgres"))

	_, err = l.Load(context.Background(), "postgres")
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestRegistrySupplier(t *testing.T) {
	m, err := RegistrySupplier(context.Background(), "postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", m.Dialect().Name)

	_, err = RegistrySupplier(context.Background(), "oracle")
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)
}

func TestLoadUnknownDialect(t *testing.T) {
	l := New(Config{})

	_, err := l.Load(context.Background(), "oracle")
	var unavailable *ModuleUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)
}
