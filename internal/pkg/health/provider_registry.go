package health

import (
	"context"
	"time"

	"rxcal/internal/pkg/enlightenment"
)

// RegistryProvider reports which capability providers were discovered.
// It is DOWN without a work queue and DEGRADED when discovery fell back to
// the portable environment.
type RegistryProvider struct {
	name     string
	registry *enlightenment.Registry
}

// NewRegistryProvider creates a health provider for registry
func NewRegistryProvider(name string, registry *enlightenment.Registry) *RegistryProvider {
	return &RegistryProvider{name: name, registry: registry}
}

// Name returns the name of the provider
func (p *RegistryProvider) Name() string {
	return p.name
}

// Check performs the health check
func (p *RegistryProvider) Check(ctx context.Context) HealthCheckResult {
	result := HealthCheckResult{
		Name:      p.name,
		Status:    StatusUp,
		Details:   make(map[string]interface{}),
		CheckedAt: time.Now(),
	}

	env := p.registry.Environment()
	result.Details["portable"] = env.Portable
	result.Details["num_cpu"] = env.NumCPU

	providers := make(map[string]string)
	for _, reg := range p.registry.Registrations() {
		providers[reg.Kind.String()] = reg.Provider
	}
	result.Details["providers"] = providers

	if _, ok := providers[enlightenment.KindWorkQueue.String()]; !ok {
		result.Status = StatusDown
		result.Error = "no work queue available"
		return result
	}
	if env.Portable {
		result.Status = StatusDegraded
		result.Details["reason"] = "host probe failed, running on portable defaults"
	}
	return result
}
