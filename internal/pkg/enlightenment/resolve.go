package enlightenment

import (
	"rxcal/internal/pkg/platform"
)

// Plan is the ordered list of candidate providers for every kind.
type Plan struct {
	Env        platform.Environment
	Candidates map[Kind][]Provider
}

// Chosen returns the first candidate for kind.
func (p Plan) Chosen(kind Kind) (Provider, bool) {
	c := p.Candidates[kind]
	if len(c) == 0 {
		return nil, false
	}
	return c[0], true
}

// Resolve picks candidates for every kind without side effects. Specialized
// providers come first, in the order given, followed by defaults. Specialized
// providers are dropped for disabled kinds and for portable environments.
func Resolve(env platform.Environment, providers []Provider, disabled []Kind) Plan {
	off := make(map[Kind]bool, len(disabled))
	for _, k := range disabled {
		off[k] = true
	}

	plan := Plan{Env: env, Candidates: make(map[Kind][]Provider)}
	for _, kind := range Kinds() {
		var specialized, defaults []Provider
		for _, p := range providers {
			if p.Kind() != kind || !p.Available(env) {
				continue
			}
			if p.Specialized() {
				if env.Portable || off[kind] {
					continue
				}
				specialized = append(specialized, p)
				continue
			}
			defaults = append(defaults, p)
		}
		if c := append(specialized, defaults...); len(c) > 0 {
			plan.Candidates[kind] = c
		}
	}
	return plan
}
