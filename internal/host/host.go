// Package host runs a pool manager on a single goroutine and drives its
// lifecycle: start, per-frame tick, scope reload and shutdown.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_pool/internal/pool"
)

// ErrStopped is returned by Do once the loop is no longer running.
var ErrStopped = errors.New("host loop stopped")

// Factory builds the manager of a new scope.
type Factory func() (*pool.Manager, error)

type request struct {
	fn   func(*pool.Manager) error
	errc chan error
}

// Loop owns one manager at a time. Every access to it goes through Do, so the
// manager only ever runs on the loop goroutine.
type Loop struct {
	factory  Factory
	tickRate time.Duration
	observe  func(pool.Stats)
	logger   zerolog.Logger
	requests chan request
	done     chan struct{}
	manager  *pool.Manager
}

// Option configures a Loop.
type Option func(*Loop)

// WithTickRate sets the frame interval, 50ms by default.
func WithTickRate(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.tickRate = d
		}
	}
}

// WithStatsObserver is called with an occupancy snapshot after every tick.
func WithStatsObserver(fn func(pool.Stats)) Option {
	return func(l *Loop) { l.observe = fn }
}

// WithLogger sets the logger. The global zerolog logger is used by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates a loop that builds its managers with factory.
func New(factory Factory, opts ...Option) *Loop {
	l := &Loop{
		factory:  factory,
		tickRate: 50 * time.Millisecond,
		logger:   log.Logger,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("component", "host").Logger()

	return l
}

// Run starts a manager and serves requests and ticks until ctx is done.
// The manager is shut down before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	m, err := l.start()
	if err != nil {
		return err
	}
	l.manager = m
	defer func() {
		l.manager.Shutdown()
		l.logger.Info().Str("event", "host_stopped").Msg("pool host stopped")
	}()

	ticker := time.NewTicker(l.tickRate)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-l.requests:
			req.errc <- req.fn(l.manager)
		case now := <-ticker.C:
			// late phase: every request of this frame has been applied
			if err := l.manager.Tick(now.Sub(last)); err != nil {
				l.logger.Error().Err(err).Str("event", "tick_error").Msg("delayed release failed")
			}
			last = now
			if l.observe != nil {
				l.observe(l.manager.Stats())
			}
		}
	}
}

func (l *Loop) start() (*pool.Manager, error) {
	m, err := l.factory()
	if err != nil {
		return nil, fmt.Errorf("failed to build pool manager: %w", err)
	}
	if err := m.Start(); err != nil {
		return nil, fmt.Errorf("failed to start pool manager: %w", err)
	}

	return m, nil
}

// Do runs fn on the loop goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*pool.Manager) error) error {
	req := request{fn: fn, errc: make(chan error, 1)}
	select {
	case l.requests <- req:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReloadHook runs on the loop right after a reload, before any other request.
// rebuilt reports whether the manager was replaced.
type ReloadHook func(m *pool.Manager, rebuilt bool)

// Reload changes scope. A persistent manager is kept as is; otherwise the
// current manager is shut down and a fresh one is built and started.
func (l *Loop) Reload(ctx context.Context, hooks ...ReloadHook) error {
	return l.Do(ctx, func(m *pool.Manager) error {
		if m.Persistent() {
			l.logger.Info().Str("event", "scope_reload").Msg("persistent pool kept across reload")
			for _, h := range hooks {
				h(m, false)
			}
			return nil
		}

		next, err := l.start()
		if err != nil {
			return err
		}
		m.Shutdown()
		l.manager = next
		l.logger.Info().Str("event", "scope_reload").Msg("pool rebuilt for new scope")
		for _, h := range hooks {
			h(next, true)
		}

		return nil
	})
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
