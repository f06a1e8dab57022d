package pool

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultName is the name of the manager's root group unless WithName is used.
const DefaultName = "ObjectPoolManager"

// Policy holds the runtime switches of a Manager. Changes apply from the next operation.
type Policy struct {
	// Persistent keeps the manager alive across scope reloads.
	Persistent bool
	// Debug enables diagnostic logging of misses and fallbacks.
	Debug bool
	// UsePreset merges the configured presets into the registry on Start.
	UsePreset bool
	// EnforcePooling forbids dynamic creation and destruction: exhaustion
	// yields no instance and releasing an instance the manager never handed
	// out is an overdraw.
	EnforcePooling bool
	// AllowInstantiation lets the manager load instances through its Loader
	// and destroy instances that belong to no category.
	AllowInstantiation bool
	// DetachOnAcquire removes acquired instances from the pool's group tree.
	DetachOnAcquire bool
}

// Preset is a shareable list of category definitions merged into a registry on Start.
type Preset struct {
	Name        string
	Definitions []Definition
}

// Source tells where an acquired instance came from.
type Source int

// Acquisition sources.
const (
	SourceNone Source = iota
	SourcePool
	SourceDynamic
	SourceLoader
)

func (s Source) String() string {
	switch s {
	case SourcePool:
		return "pool"
	case SourceDynamic:
		return "dynamic"
	case SourceLoader:
		return "loader"
	default:
		return "none"
	}
}

// Outcome tells what Release did with an instance.
type Outcome int

// Release outcomes.
const (
	OutcomePooled Outcome = iota
	OutcomeDestroyed
	OutcomeIgnored
	OutcomeOverdraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomePooled:
		return "pooled"
	case OutcomeDestroyed:
		return "destroyed"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "overdraw"
	}
}

// Observer receives manager events, e.g. for metrics.
type Observer interface {
	Acquired(category string, src Source)
	Exhausted(category string)
	Released(category string, outcome Outcome)
}

// Result is an acquired instance together with where it came from.
type Result struct {
	Instance Instance
	Source   Source
}

type delayedRelease struct {
	instance Instance
	delay    time.Duration
	elapsed  time.Duration
}

// Manager hands out pooled instances and applies the fallback policy.
// It is not safe for concurrent use: all calls must come from one goroutine.
type Manager struct {
	registry  *Registry
	group     *Group
	placement Placement
	policy    Policy
	presets   []*Preset
	loader    Loader
	observer  Observer
	logger    zerolog.Logger
	pending   []*delayedRelease
	untracked map[Instance]struct{} // handed out but owned by no slot
	merged    bool
	started   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy sets the initial policy switches.
func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithPresets sets the presets merged on Start when Policy.UsePreset is set. Nil entries are skipped.
func WithPresets(presets ...*Preset) Option {
	return func(m *Manager) { m.presets = append(m.presets, presets...) }
}

// WithLoader sets the loader used for names that cannot be served by a pool.
func WithLoader(l Loader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithPlacement sets the placement used by Acquire and on release.
func WithPlacement(p Placement) Option {
	return func(m *Manager) { m.placement = p }
}

// WithName names the manager's root group.
func WithName(name string) Option {
	return func(m *Manager) { m.group = NewGroup(name, nil) }
}

// WithLogger sets the logger. The global zerolog logger is used by default.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager around registry. A nil registry is reported by Start.
func NewManager(registry *Registry, opts ...Option) *Manager {
	m := &Manager{
		registry:  registry,
		group:     NewGroup(DefaultName, nil),
		logger:    log.Logger,
		untracked: make(map[Instance]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "pool").Str("manager", m.group.Name()).Logger()

	return m
}

// Start merges presets, sorts the registry and initializes every category.
// Presets are merged once; starting again after Shutdown only re-initializes.
func (m *Manager) Start() error {
	if m.registry == nil {
		m.logger.Error().Err(ErrMissingRegistry).Msg("pool registry is nil, something failed to initialize")
		return ErrMissingRegistry
	}
	if m.started {
		return nil
	}

	if m.policy.UsePreset && !m.merged {
		var defs []Definition
		names := make([]string, 0, len(m.presets))
		for _, p := range m.presets {
			if p == nil {
				continue
			}
			defs = append(defs, p.Definitions...)
			names = append(names, p.Name)
		}
		if err := m.registry.Merge(defs...); err != nil {
			return fmt.Errorf("merge presets %q: %w", names, err)
		}
		m.merged = true
	}

	m.registry.SetRoot(m.group)
	m.registry.Sort()
	if err := m.registry.InitializeAll(); err != nil {
		m.registry.ShutdownAll()
		return fmt.Errorf("initialize pools: %w", err)
	}
	m.started = true

	m.logger.Info().
		Str("event", "pool_started").
		Int("categories", m.registry.Len()).
		Msg("object pool started")

	return nil
}

// Shutdown destroys every pooled instance and drops pending delayed releases.
func (m *Manager) Shutdown() {
	if m.registry != nil {
		m.registry.ShutdownAll()
	}
	m.pending = nil
	m.started = false
}

// Acquire hands out an instance of the named category at the manager's placement.
func (m *Manager) Acquire(name string) (Instance, error) {
	return m.AcquireAt(name, m.placement)
}

// AcquireAt hands out an instance of the named category at p.
// With pooling enforced an exhausted pool yields a nil instance and no error.
func (m *Manager) AcquireAt(name string, p Placement) (Instance, error) {
	res, err := m.AcquireWithSource(name, p)
	return res.Instance, err
}

// AcquireWithSource is AcquireAt that also reports where the instance came from.
func (m *Manager) AcquireWithSource(name string, p Placement) (Result, error) {
	var res Result

	if c := m.find(name); c != nil {
		if inst := c.Acquire(p); inst != nil {
			res = Result{Instance: inst, Source: SourcePool}
			m.debug().Str("category", name).Msg("acquired an object from the pool")
		} else if m.policy.EnforcePooling {
			m.debug().Str("category", name).
				Msg("attempting to overdraw from the pool, but pooling is enforced, no object returned")
			if m.observer != nil {
				m.observer.Exhausted(name)
			}
		} else {
			if m.observer != nil {
				m.observer.Exhausted(name)
			}
			inst, err := m.instantiate(c, p)
			if err != nil {
				m.logger.Warn().Err(err).Str("category", name).Msg("dynamic instantiation failed")
			} else if inst != nil {
				res = Result{Instance: inst, Source: SourceDynamic}
				m.debug().Str("category", name).Msg("overdrawing from the pool, instantiated a new instance")
			}
		}
	}

	if res.Instance == nil {
		if m.policy.AllowInstantiation {
			inst, err := m.load(name, p)
			if err != nil {
				m.logger.Warn().Err(err).Str("name", name).Msg("resource fallback failed")
			} else if inst != nil {
				res = Result{Instance: inst, Source: SourceLoader}
			}
		} else {
			m.debug().Str("name", name).Msg("instantiation after start up is not allowed")
		}
	}

	if res.Source == SourceDynamic || res.Source == SourceLoader {
		m.untracked[res.Instance] = struct{}{}
	}

	if res.Instance != nil && m.policy.DetachOnAcquire {
		res.Instance.SetParent(nil)
	}

	if res.Instance == nil && !m.policy.EnforcePooling {
		m.logger.Error().Err(ErrAcquireFailed).Str("name", name).Msg("object could not be acquired or instantiated")
		return Result{}, fmt.Errorf("acquire %q: %w", name, ErrAcquireFailed)
	}

	if res.Instance != nil && m.observer != nil {
		m.observer.Acquired(name, res.Source)
	}

	return res, nil
}

func (m *Manager) instantiate(c *Category, p Placement) (Instance, error) {
	if c.prototype == nil {
		return nil, ErrNilPrototype
	}
	return c.prototype.Instantiate(c.name, p)
}

func (m *Manager) load(name string, p Placement) (Instance, error) {
	if m.loader == nil {
		return nil, nil
	}
	return m.loader.Load(name, p)
}

// Release returns inst to its pool, or destroys it when the manager created it
// outside the pool. Releasing an instance the manager never handed out while
// pooling is enforced fails with ErrOverdraw.
func (m *Manager) Release(inst Instance) error {
	if inst == nil {
		m.debug().Msg("nil object passed to release")
		return nil
	}
	name := inst.Name()

	if _, ok := m.untracked[inst]; ok {
		delete(m.untracked, inst)
		m.debug().Str("name", name).Msg("object created outside the pool passed to release, destroying it")
		inst.Destroy()
		m.released(name, OutcomeDestroyed)
		return nil
	}

	c := m.find(name)
	if c == nil {
		if m.policy.AllowInstantiation {
			m.debug().Str("name", name).Msg("object not in pool passed to release, destroying object")
			inst.Destroy()
			m.released(name, OutcomeDestroyed)
		} else {
			m.debug().Str("name", name).
				Msg("object not in pool passed to release, but external object removal is not allowed")
			m.released(name, OutcomeIgnored)
		}
		return nil
	}

	if c.Release(inst, m.placement) {
		m.debug().Str("category", name).Msg("released an object back into the pool")
		m.released(name, OutcomePooled)
		return nil
	}

	if m.policy.EnforcePooling {
		m.logger.Error().Err(ErrOverdraw).Str("category", name).
			Msg("failed to release object, ensure enforce pooling was not disabled during runtime")
		m.released(name, OutcomeOverdraw)
		return fmt.Errorf("release %q: %w", name, ErrOverdraw)
	}

	m.debug().Str("category", name).Msg("object instantiated after start up by the pool, destroying it")
	inst.Destroy()
	m.released(name, OutcomeDestroyed)

	return nil
}

// ReleaseAfter schedules inst to be released once delay has elapsed in Tick.
// A scheduled release cannot be cancelled.
func (m *Manager) ReleaseAfter(inst Instance, delay time.Duration) {
	m.pending = append(m.pending, &delayedRelease{instance: inst, delay: delay})
}

// Tick advances pending delayed releases by delta and releases the due ones.
// It is meant to run once per frame after all other work of that frame.
func (m *Manager) Tick(delta time.Duration) error {
	var errs []error
	for i := len(m.pending) - 1; i >= 0; i-- {
		d := m.pending[i]
		d.elapsed += delta
		if d.elapsed < d.delay {
			continue
		}
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		if err := m.Release(d.instance); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Add registers and initializes a new category, then re-sorts the registry.
func (m *Manager) Add(prototype Prototype, name string, capacity int) error {
	if m.registry == nil {
		return ErrMissingRegistry
	}
	if _, err := m.registry.Add(prototype, name, capacity); err != nil {
		return err
	}
	m.registry.Sort()
	m.debug().Str("category", name).Int("capacity", capacity).Msg("added pool category")

	return nil
}

// Remove shuts down and unregisters the named category.
func (m *Manager) Remove(name string) error {
	c := m.find(name)
	if c == nil {
		return fmt.Errorf("remove %q: %w", name, ErrUnknownCategory)
	}
	m.registry.Remove(c)
	m.debug().Str("category", name).Msg("removed pool category")

	return nil
}

func (m *Manager) find(name string) *Category {
	if m.registry == nil {
		return nil
	}
	return m.registry.Find(name)
}

func (m *Manager) released(name string, o Outcome) {
	if m.observer != nil {
		m.observer.Released(name, o)
	}
}

// debug returns a debug event that is only emitted when Policy.Debug is set.
func (m *Manager) debug() *zerolog.Event {
	if !m.policy.Debug {
		return nil
	}
	return m.logger.Debug()
}

// Policy returns the current policy switches.
func (m *Manager) Policy() Policy { return m.policy }

// SetPolicy replaces the policy switches.
func (m *Manager) SetPolicy(p Policy) { m.policy = p }

// Persistent reports whether the manager survives scope reloads.
func (m *Manager) Persistent() bool { return m.policy.Persistent }

// Registry returns the manager's registry.
func (m *Manager) Registry() *Registry { return m.registry }

// Group returns the root group of all category groups.
func (m *Manager) Group() *Group { return m.group }

// Placement returns the placement used by Acquire and on release.
func (m *Manager) Placement() Placement { return m.placement }

// Started reports whether Start completed.
func (m *Manager) Started() bool { return m.started }

// Untracked returns the number of handed out instances that belong to no slot.
func (m *Manager) Untracked() int { return len(m.untracked) }

// Pending returns the number of scheduled delayed releases.
func (m *Manager) Pending() int { return len(m.pending) }
