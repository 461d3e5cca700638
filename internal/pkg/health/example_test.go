package health_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/health"
	"rxcal/internal/pkg/platform"
	"rxcal/internal/pkg/scheduler"
)

// Example_basicUsage checks two providers synchronously
func Example_basicUsage() {
	service, _ := health.NewService(health.DefaultServiceConfig())
	service.RegisterProvider(staticProvider("work-queue", health.StatusUp))
	service.RegisterProvider(staticProvider("timer", health.StatusUp))

	results, status := service.Check(context.Background())

	fmt.Printf("Overall Status: %s\n", status)
	fmt.Printf("Total Checks: %d\n", len(results))
	// Output:
	// Overall Status: UP
	// Total Checks: 2
}

// Example_asyncMode serves cached results refreshed by a periodic schedule
func Example_asyncMode() {
	registry := enlightenment.New(enlightenment.Options{
		Probe: platform.StaticProbe(platform.Portable(), nil),
	})
	defer registry.Shutdown(context.Background())

	service, err := health.NewService(health.ServiceConfig{
		AsyncMode:     true,
		CheckInterval: 10 * time.Millisecond,
		Scheduler:     scheduler.New(registry),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer service.Stop()
	service.RegisterProvider(staticProvider("cache", health.StatusUp))

	// Wait for a background check that saw the provider
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if results, _ := service.GetCachedResults(); len(results) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	results, status := service.GetCachedResults()
	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Checks: %d\n", len(results))
	// Output:
	// Status: UP
	// Checks: 1
}

// Example_httpHandler serves the detailed health response
func Example_httpHandler() {
	service, _ := health.NewService(health.DefaultServiceConfig())
	service.RegisterProvider(staticProvider("capabilities", health.StatusDown))

	rec := httptest.NewRecorder()
	health.DetailedHealthHandler(service).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	fmt.Printf("Status Code: %d\n", rec.Code)
	fmt.Printf("Content-Type: %s\n", rec.Header().Get("Content-Type"))
	// Output:
	// Status Code: 503
	// Content-Type: application/json
}

// Example_aggregationStrategies combines the same results three ways
func Example_aggregationStrategies() {
	check := func(strategy health.AggregationStrategy, providers ...health.HealthProvider) health.HealthStatus {
		service, _ := health.NewService(health.ServiceConfig{
			AggregationStrategy: strategy,
			CriticalProviders:   []string{"work-queue"},
		})
		for _, p := range providers {
			service.RegisterProvider(p)
		}
		_, status := service.Check(context.Background())
		return status
	}

	fmt.Printf("ALL Strategy: %s\n", check(health.StrategyAll,
		staticProvider("work-queue", health.StatusUp),
		staticProvider("scheduler", health.StatusDegraded)))
	fmt.Printf("ANY Strategy: %s\n", check(health.StrategyAny,
		staticProvider("work-queue", health.StatusUp),
		staticProvider("scheduler", health.StatusDown)))
	fmt.Printf("CRITICAL Strategy: %s\n", check(health.StrategyCritical,
		staticProvider("work-queue", health.StatusUp),
		staticProvider("scheduler", health.StatusDown)))
	// Output:
	// ALL Strategy: DEGRADED
	// ANY Strategy: UP
	// CRITICAL Strategy: DEGRADED
}

// Example_registryProvider reports the capability providers picked for a host
func Example_registryProvider() {
	env := platform.Portable()
	env.NumCPU = 2
	registry := enlightenment.New(enlightenment.Options{
		Probe: platform.StaticProbe(env, nil),
	})
	defer registry.Shutdown(context.Background())

	provider := health.NewRegistryProvider("capabilities", registry)
	result := provider.Check(context.Background())
	providers := result.Details["providers"].(map[string]string)

	fmt.Printf("Status: %s\n", result.Status)
	fmt.Printf("Work queue: %s\n", providers["work-queue"])
	// Output:
	// Status: DEGRADED
	// Work queue: goroutine
}

type providerFunc struct {
	name  string
	check func(ctx context.Context) health.HealthStatus
}

func (p providerFunc) Name() string { return p.name }

func (p providerFunc) Check(ctx context.Context) health.HealthCheckResult {
	return health.HealthCheckResult{
		Name:      p.name,
		Status:    p.check(ctx),
		CheckedAt: time.Now(),
	}
}

func staticProvider(name string, status health.HealthStatus) health.HealthProvider {
	return providerFunc{name: name, check: func(context.Context) health.HealthStatus { return status }}
}
