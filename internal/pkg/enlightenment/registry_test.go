package enlightenment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"rxcal/internal/pkg/config"
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"
	"rxcal/internal/pkg/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostEnv() platform.Environment {
	return platform.Environment{
		GOOS:            "linux",
		NumCPU:          4,
		CanSpawnThreads: true,
		CanPinThreads:   true,
		TaskPool:        true,
	}
}

func names(ps []Provider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}

func TestResolve_PrefersSpecialized(t *testing.T) {
	plan := Resolve(hostEnv(), Builtin(DefaultBuiltinConfig()), nil)

	assert.Equal(t, []string{"worker-pool", "goroutine"}, names(plan.Candidates[KindWorkQueue]))
	assert.Equal(t, []string{"pinned-threads", "dedicated-threads"}, names(plan.Candidates[KindLongRunning]))
	assert.Equal(t, []string{"task-pool"}, names(plan.Candidates[KindTaskPool]))

	p, ok := plan.Chosen(KindStopwatch)
	require.True(t, ok)
	assert.Equal(t, "monotonic", p.Name())
}

func TestResolve_DisabledKindUsesDefault(t *testing.T) {
	plan := Resolve(hostEnv(), Builtin(DefaultBuiltinConfig()), []Kind{KindWorkQueue, KindTaskPool})

	assert.Equal(t, []string{"goroutine"}, names(plan.Candidates[KindWorkQueue]))
	_, ok := plan.Chosen(KindTaskPool)
	assert.False(t, ok, "task pool has no default")
}

func TestResolve_PortableEnvironment(t *testing.T) {
	plan := Resolve(platform.Portable(), Builtin(DefaultBuiltinConfig()), nil)

	assert.Equal(t, []string{"goroutine"}, names(plan.Candidates[KindWorkQueue]))
	_, ok := plan.Chosen(KindLongRunning)
	assert.False(t, ok, "portable hosts cannot spawn threads")
	_, ok = plan.Chosen(KindTaskPool)
	assert.False(t, ok)
	_, ok = plan.Chosen(KindPeriodic)
	assert.True(t, ok)
}

func TestResolve_IsPure(t *testing.T) {
	var built atomic.Int32
	providers := []Provider{
		NewProvider("counting", KindStopwatch, false, nil, func(Deps) (any, error) {
			built.Add(1)
			return platform.NewStopwatchFactory(), nil
		}),
	}

	Resolve(hostEnv(), providers, nil)
	Resolve(hostEnv(), providers, nil)
	assert.Zero(t, built.Load())
}

func newTestRegistry(t *testing.T, env platform.Environment, probeErr error) *Registry {
	t.Helper()
	r := New(Options{
		Probe:   platform.StaticProbe(env, probeErr),
		OnFault: func(error) {},
		Logger:  logger.NewNop(),
	})
	t.Cleanup(func() { _ = r.Shutdown(context.Background()) })
	return r
}

func TestRegistry_EnsureLoadedIsIdempotent(t *testing.T) {
	r := newTestRegistry(t, hostEnv(), nil)

	assert.True(t, r.EnsureLoaded())
	first, ok := r.GetCapability(KindPeriodic)
	require.True(t, ok)

	assert.True(t, r.EnsureLoaded())
	second, ok := r.GetCapability(KindPeriodic)
	require.True(t, ok)
	assert.Same(t, first, second)

	assert.Equal(t, r.Registrations(), r.Registrations())
}

func TestRegistry_ConcurrentFirstUse(t *testing.T) {
	var probes, builds atomic.Int32
	providers := []Provider{
		NewProvider("counting", KindStopwatch, false, nil, func(Deps) (any, error) {
			builds.Add(1)
			return platform.NewStopwatchFactory(), nil
		}),
	}
	r := New(Options{
		Probe: func() (platform.Environment, error) {
			probes.Add(1)
			return hostEnv(), nil
		},
		Providers: providers,
	})

	var wg sync.WaitGroup
	results := make([]any, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.EnsureLoaded()
			results[i], _ = r.GetCapability(KindStopwatch)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	assert.GreaterOrEqual(t, probes.Load(), int32(1))
	for _, v := range results {
		assert.Same(t, results[0], v)
	}
}

func TestRegistry_ProbeFailureFallsBackToDefaults(t *testing.T) {
	r := newTestRegistry(t, hostEnv(), errors.New("sandboxed"))

	assert.True(t, r.EnsureLoaded())
	assert.True(t, r.Environment().Portable)

	regs := r.Registrations()
	require.NotEmpty(t, regs)
	for _, reg := range regs {
		assert.False(t, reg.Specialized, "%s should use a default", reg.Kind)
	}

	_, ok := r.WorkQueue()
	assert.True(t, ok)
	_, ok = r.Threads()
	assert.False(t, ok)
	_, ok = r.TaskPool()
	assert.False(t, ok)
}

func TestRegistry_SpecializedInstances(t *testing.T) {
	r := newTestRegistry(t, hostEnv(), nil)

	q, ok := r.WorkQueue()
	require.True(t, ok)
	pool, isPool := q.(*worker.Worker)
	require.True(t, isPool)
	assert.True(t, pool.IsRunning())

	tp, ok := r.TaskPool()
	require.True(t, ok)
	assert.NotSame(t, q, tp)

	_, ok = r.Clock()
	assert.True(t, ok)
	_, ok = r.Periodic()
	assert.True(t, ok)
	_, ok = r.Stopwatches()
	assert.True(t, ok)

	require.NoError(t, r.Shutdown(context.Background()))
	assert.False(t, pool.IsRunning())
}

func TestRegistry_FailingProviderFallsThrough(t *testing.T) {
	providers := append([]Provider{
		NewProvider("broken", KindWorkQueue, true, nil, func(Deps) (any, error) {
			return nil, errors.New("no pool today")
		}),
	}, Builtin(DefaultBuiltinConfig())[1:]...)

	r := New(Options{Probe: platform.StaticProbe(hostEnv(), nil), Providers: providers})
	defer r.Shutdown(context.Background())

	var reg Registration
	for _, x := range r.Registrations() {
		if x.Kind == KindWorkQueue {
			reg = x
		}
	}
	assert.Equal(t, "goroutine", reg.Provider)
}

func TestRegistry_UnsupportedKind(t *testing.T) {
	r := newTestRegistry(t, platform.Environment{NumCPU: 1}, nil)

	v, ok := r.GetCapability(KindLongRunning)
	assert.False(t, ok)
	assert.Nil(t, v)

	_, ok = r.GetCapability(Kind("teleport"))
	assert.False(t, ok)
}

func TestRegistry_LookupOnlyEarlierKinds(t *testing.T) {
	var seen bool
	providers := []Provider{
		NewProvider("early", KindWorkQueue, false, nil, func(deps Deps) (any, error) {
			_, seen = deps.Lookup(KindStopwatch)
			return platform.NewGoroutineQueue(nil), nil
		}),
		NewProvider("late", KindStopwatch, false, nil, func(Deps) (any, error) {
			return platform.NewStopwatchFactory(), nil
		}),
	}
	r := New(Options{Probe: platform.StaticProbe(hostEnv(), nil), Providers: providers})

	_, ok := r.WorkQueue()
	require.True(t, ok)
	assert.False(t, seen)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.True(t, Default().EnsureLoaded())
	_, ok := Default().Stopwatches()
	assert.True(t, ok)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("long-running")
	require.NoError(t, err)
	assert.Equal(t, KindLongRunning, k)

	_, err = ParseKind("nope")
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{Workers: 2},
		Enlightenment: config.EnlightenmentConfig{
			Disabled:     []string{"work-queue"},
			AllowThreads: false,
		},
	}
	r, err := NewFromConfig(cfg, logger.NewNop())
	require.NoError(t, err)

	q, ok := r.WorkQueue()
	require.True(t, ok)
	_, isPool := q.(*worker.Worker)
	assert.False(t, isPool)

	_, ok = r.Threads()
	assert.False(t, ok)
	_, ok = r.TaskPool()
	assert.False(t, ok)

	cfg.Enlightenment.Disabled = []string{"bogus"}
	_, err = NewFromConfig(cfg, nil)
	assert.Error(t, err)
}
