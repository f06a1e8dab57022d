package host

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/pool"
)

func testFactory(policy pool.Policy, builds *int) Factory {
	catalog := entity.NewCatalog("laser")
	return func() (*pool.Manager, error) {
		*builds++
		m := pool.NewManager(pool.NewRegistry(), pool.WithPolicy(policy), pool.WithLogger(zerolog.Nop()))
		proto, _ := catalog.Prototype("laser")
		if err := m.Add(proto, "laser", 2); err != nil {
			return nil, err
		}
		return m, nil
	}
}

func startLoop(t *testing.T, f Factory, opts ...Option) (*Loop, context.CancelFunc) {
	t.Helper()

	opts = append([]Option{WithLogger(zerolog.Nop()), WithTickRate(5 * time.Millisecond)}, opts...)
	l := New(f, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-l.Done()
		require.NoError(t, <-errc)
	})

	return l, cancel
}

func TestLoop_DoRunsOnLoop(t *testing.T) {
	builds := 0
	l, _ := startLoop(t, testFactory(pool.Policy{EnforcePooling: true}, &builds))
	ctx := context.Background()

	var got pool.Instance
	err := l.Do(ctx, func(m *pool.Manager) error {
		var err error
		got, err = m.Acquire("laser")
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	sentinel := errors.New("boom")
	assert.ErrorIs(t, l.Do(ctx, func(*pool.Manager) error { return sentinel }), sentinel)
}

func TestLoop_DelayedReleaseDrivenByTicks(t *testing.T) {
	builds := 0
	var mu sync.Mutex
	var last pool.Stats
	l, _ := startLoop(t, testFactory(pool.Policy{EnforcePooling: true}, &builds),
		WithStatsObserver(func(s pool.Stats) {
			mu.Lock()
			last = s
			mu.Unlock()
		}))
	ctx := context.Background()

	require.NoError(t, l.Do(ctx, func(m *pool.Manager) error {
		inst, err := m.Acquire("laser")
		if err != nil {
			return err
		}
		m.ReleaseAfter(inst, 20*time.Millisecond)
		return nil
	}))

	require.Eventually(t, func() bool {
		free := 0
		_ = l.Do(ctx, func(m *pool.Manager) error {
			free = m.Registry().Find("laser").Free()
			return nil
		})
		return free == 2
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last.Categories) == 1 && last.PendingReleases == 0
	}, time.Second, 5*time.Millisecond)
}

func TestLoop_Reload(t *testing.T) {
	tests := []struct {
		name       string
		persistent bool
		wantBuilds int
		wantSame   bool
	}{
		{"transient manager is rebuilt", false, 2, false},
		{"persistent manager is kept", true, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builds := 0
			l, _ := startLoop(t, testFactory(pool.Policy{Persistent: tt.persistent}, &builds))
			ctx := context.Background()

			var before, after *pool.Manager
			var acquired pool.Instance
			require.NoError(t, l.Do(ctx, func(m *pool.Manager) error {
				before = m
				var err error
				acquired, err = m.Acquire("laser")
				return err
			}))

			require.NoError(t, l.Reload(ctx))
			require.NoError(t, l.Do(ctx, func(m *pool.Manager) error {
				after = m
				return nil
			}))

			assert.Equal(t, tt.wantSame, before == after)
			assert.Equal(t, !tt.persistent, acquired.(*entity.Entity).Destroyed())
			require.NoError(t, l.Do(ctx, func(*pool.Manager) error {
				assert.Equal(t, tt.wantBuilds, builds)
				return nil
			}))
		})
	}
}

func TestLoop_ReloadHooks(t *testing.T) {
	for _, persistent := range []bool{false, true} {
		builds := 0
		l, _ := startLoop(t, testFactory(pool.Policy{Persistent: persistent}, &builds))
		ctx := context.Background()

		var hooked, current *pool.Manager
		var rebuilt bool
		require.NoError(t, l.Reload(ctx, func(m *pool.Manager, r bool) {
			hooked, rebuilt = m, r
		}))
		require.NoError(t, l.Do(ctx, func(m *pool.Manager) error {
			current = m
			return nil
		}))

		assert.Same(t, current, hooked, "hook sees the manager that serves the next request")
		assert.Equal(t, !persistent, rebuilt)
	}
}

func TestLoop_Stopped(t *testing.T) {
	builds := 0
	l := New(testFactory(pool.Policy{}, &builds), WithLogger(zerolog.Nop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	err := l.Do(context.Background(), func(*pool.Manager) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestLoop_FactoryError(t *testing.T) {
	l := New(func() (*pool.Manager, error) {
		return pool.NewManager(nil, pool.WithLogger(zerolog.Nop())), nil
	}, WithLogger(zerolog.Nop()))

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, pool.ErrMissingRegistry)

	err = l.Do(context.Background(), func(*pool.Manager) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}
