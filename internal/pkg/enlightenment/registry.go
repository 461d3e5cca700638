package enlightenment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"

	"go.uber.org/zap"
)

// Options configures a Registry.
type Options struct {
	// Probe discovers the host. Defaults to a HostProbe allowing threads and
	// the task pool.
	Probe platform.Probe
	// Providers defaults to Builtin(DefaultBuiltinConfig()).
	Providers []Provider
	// Disabled kinds only get default providers.
	Disabled []Kind
	// OnFault receives panics from work run by built instances. Defaults to
	// platform.DefaultFaultHandler.
	OnFault platform.FaultHandler
	Logger  *logger.Logger
}

// DefaultOptions returns the options used by Default.
func DefaultOptions() Options {
	return Options{
		Probe: platform.HostProbe(platform.ProbeOptions{
			AllowThreads:   true,
			EnableTaskPool: true,
		}),
		Providers: Builtin(DefaultBuiltinConfig()),
	}
}

// Registration is the provider chosen for a kind and the instance it built.
type Registration struct {
	Kind        Kind   `json:"kind"`
	Provider    string `json:"provider"`
	Specialized bool   `json:"specialized"`
	Instance    any    `json:"-"`
}

// Registry caches one capability instance per kind.
type Registry struct {
	opts   Options
	logger *logger.Logger
	table  atomic.Pointer[table]
}

// New creates a Registry. Nothing is probed until first use.
func New(opts Options) *Registry {
	defaults := DefaultOptions()
	if opts.Probe == nil {
		opts.Probe = defaults.Probe
	}
	if opts.Providers == nil {
		opts.Providers = defaults.Providers
	}
	if opts.OnFault == nil {
		opts.OnFault = platform.DefaultFaultHandler
	}
	return &Registry{
		opts:   opts,
		logger: logger.OrNop(opts.Logger).Named("enlightenment"),
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return New(DefaultOptions())
})

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry()
}

// EnsureLoaded runs discovery once and reports whether the registry is in a
// loaded state, which is always true: a failed probe falls back to the
// portable environment.
func (r *Registry) EnsureLoaded() bool {
	if r.table.Load() != nil {
		return true
	}

	env, err := r.opts.Probe()
	if err != nil {
		r.logger.Warn("Host probe failed, using portable defaults", zap.Error(err))
		env = platform.Portable()
	}

	t := newTable(Resolve(env, r.opts.Providers, r.opts.Disabled))
	if r.table.CompareAndSwap(nil, t) {
		for _, kind := range Kinds() {
			p, ok := t.plan.Chosen(kind)
			if !ok {
				r.logger.Info("Capability unavailable",
					zap.Stringer("kind", kind),
					zap.NamedError("reason", errorsx.CapabilityUnsupported),
				)
				continue
			}
			r.logger.Info("Capability planned",
				zap.Stringer("kind", kind),
				zap.String("provider", p.Name()),
				zap.Bool("specialized", p.Specialized()),
			)
		}
	}
	return true
}

// GetCapability returns the instance for kind. A false result means no
// provider, specialized or default, could serve it.
func (r *Registry) GetCapability(kind Kind) (any, bool) {
	reg, ok := r.registration(kind)
	if !ok {
		return nil, false
	}
	return reg.Instance, true
}

// Registrations builds every kind and returns the ones that succeeded, in
// resolution order.
func (r *Registry) Registrations() []Registration {
	var out []Registration
	for _, kind := range Kinds() {
		if reg, ok := r.registration(kind); ok {
			out = append(out, reg)
		}
	}
	return out
}

// Environment returns the probed environment.
func (r *Registry) Environment() platform.Environment {
	r.EnsureLoaded()
	return r.table.Load().plan.Env
}

// WorkQueue returns the shared work queue.
func (r *Registry) WorkQueue() (platform.WorkQueue, bool) {
	return get[platform.WorkQueue](r, KindWorkQueue)
}

// Clock returns the clock used for timers.
func (r *Registry) Clock() (platform.Clock, bool) {
	return get[platform.Clock](r, KindTimer)
}

// Periodic returns the periodic timer factory.
func (r *Registry) Periodic() (platform.PeriodicTimerFactory, bool) {
	return get[platform.PeriodicTimerFactory](r, KindPeriodic)
}

// Threads returns the dedicated thread factory.
func (r *Registry) Threads() (platform.ThreadFactory, bool) {
	return get[platform.ThreadFactory](r, KindLongRunning)
}

// Stopwatches returns the stopwatch factory.
func (r *Registry) Stopwatches() (platform.StopwatchFactory, bool) {
	return get[platform.StopwatchFactory](r, KindStopwatch)
}

// TaskPool returns the task pool queue.
func (r *Registry) TaskPool() (platform.WorkQueue, bool) {
	return get[platform.WorkQueue](r, KindTaskPool)
}

// Shutdown stops every built instance that can be stopped. The registry
// stays loaded.
func (r *Registry) Shutdown(ctx context.Context) error {
	t := r.table.Load()
	if t == nil {
		return nil
	}

	var errs []error
	for _, kind := range Kinds() {
		e := t.entries[kind]
		if !e.built.Load() || !e.ok {
			continue
		}
		if s, ok := e.reg.Instance.(interface{ Stop(context.Context) error }); ok {
			if err := s.Stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("stop %s: %w", kind, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) registration(kind Kind) (Registration, bool) {
	r.EnsureLoaded()
	t := r.table.Load()
	e, ok := t.entries[kind]
	if !ok {
		return Registration{}, false
	}
	e.once.Do(func() {
		r.build(t, kind, e)
	})
	return e.reg, e.ok
}

func (r *Registry) build(t *table, kind Kind, e *entry) {
	defer e.built.Store(true)

	deps := Deps{
		Env:     t.plan.Env,
		Logger:  r.logger,
		OnFault: r.opts.OnFault,
		lookup: func(dep Kind) (any, bool) {
			if !t.before(dep, kind) {
				return nil, false
			}
			return r.GetCapability(dep)
		},
	}

	for _, p := range t.plan.Candidates[kind] {
		inst, err := p.New(deps)
		if err != nil {
			r.logger.Warn("Capability provider failed",
				zap.Stringer("kind", kind),
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		e.reg = Registration{
			Kind:        kind,
			Provider:    p.Name(),
			Specialized: p.Specialized(),
			Instance:    inst,
		}
		e.ok = true
		r.logger.Debug("Capability resolved",
			zap.Stringer("kind", kind),
			zap.String("provider", p.Name()),
		)
		return
	}
}

type table struct {
	plan    Plan
	order   map[Kind]int
	entries map[Kind]*entry
}

type entry struct {
	once  sync.Once
	built atomic.Bool
	reg   Registration
	ok    bool
}

func newTable(plan Plan) *table {
	t := &table{
		plan:    plan,
		order:   make(map[Kind]int),
		entries: make(map[Kind]*entry),
	}
	for i, kind := range Kinds() {
		t.order[kind] = i
		t.entries[kind] = &entry{}
	}
	return t
}

func (t *table) before(dep, kind Kind) bool {
	i, ok := t.order[dep]
	return ok && i < t.order[kind]
}

func get[T any](r *Registry, kind Kind) (T, bool) {
	var zero T
	v, ok := r.GetCapability(kind)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
