package enlightenment

import (
	"rxcal/internal/pkg/logger"
	"rxcal/internal/pkg/platform"
)

// Provider builds one implementation of a capability.
type Provider interface {
	Name() string
	Kind() Kind
	// Specialized providers are preferred over defaults and are skipped when
	// probing failed or the kind is disabled.
	Specialized() bool
	Available(env platform.Environment) bool
	New(deps Deps) (any, error)
}

// Deps is what a provider may use while building its instance.
type Deps struct {
	Env     platform.Environment
	Logger  *logger.Logger
	OnFault platform.FaultHandler

	lookup func(Kind) (any, bool)
}

// Lookup returns the instance chosen for an earlier kind.
func (d Deps) Lookup(kind Kind) (any, bool) {
	if d.lookup == nil {
		return nil, false
	}
	return d.lookup(kind)
}

type providerFunc struct {
	name        string
	kind        Kind
	specialized bool
	available   func(env platform.Environment) bool
	build       func(deps Deps) (any, error)
}

// NewProvider adapts plain functions to a Provider. A nil available means
// always available.
func NewProvider(name string, kind Kind, specialized bool, available func(env platform.Environment) bool, build func(deps Deps) (any, error)) Provider {
	return &providerFunc{
		name:        name,
		kind:        kind,
		specialized: specialized,
		available:   available,
		build:       build,
	}
}

func (p *providerFunc) Name() string      { return p.name }
func (p *providerFunc) Kind() Kind        { return p.kind }
func (p *providerFunc) Specialized() bool { return p.specialized }

func (p *providerFunc) Available(env platform.Environment) bool {
	if p.available == nil {
		return true
	}
	return p.available(env)
}

func (p *providerFunc) New(deps Deps) (any, error) {
	return p.build(deps)
}
