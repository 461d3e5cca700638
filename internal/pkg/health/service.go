package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rxcal/internal/pkg/disposable"
	"rxcal/internal/pkg/scheduler"
)

// ServiceConfig configures the health service
type ServiceConfig struct {
	// AsyncMode runs checks in the background and serves cached results
	AsyncMode bool
	// CheckInterval is the delay between background checks
	CheckInterval time.Duration
	// DefaultTimeout bounds each provider check
	DefaultTimeout time.Duration
	// AggregationStrategy defines how to aggregate statuses
	AggregationStrategy AggregationStrategy
	// CriticalProviders are the providers StrategyCritical looks at
	CriticalProviders []string
	// Scheduler runs background checks and times them; defaults to
	// scheduler.Default()
	Scheduler scheduler.Scheduler
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CheckInterval:       30 * time.Second,
		DefaultTimeout:      5 * time.Second,
		AggregationStrategy: StrategyAll,
	}
}

// Service runs health providers and aggregates their results
type Service struct {
	config    ServiceConfig
	stopwatch scheduler.StopwatchProvider
	startedAt scheduler.Stopwatch

	mu          sync.RWMutex
	providers   []HealthProvider
	cached      []HealthCheckResult
	cachedAt    time.Time
	status      HealthStatus
	asyncHandle disposable.Disposable
}

// NewService creates a health service. In async mode the first check runs at
// once and later ones every CheckInterval on the periodic scheduler.
func NewService(config ServiceConfig) (*Service, error) {
	defaults := DefaultServiceConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaults.DefaultTimeout
	}
	if config.AggregationStrategy == "" {
		config.AggregationStrategy = defaults.AggregationStrategy
	}
	if config.Scheduler == nil {
		config.Scheduler = scheduler.Default()
	}

	s := &Service{
		config: config,
		status: StatusDown,
	}
	if sw, ok := scheduler.AsStopwatch(config.Scheduler); ok {
		s.stopwatch = sw
	} else {
		s.stopwatch = scheduler.Immediate()
	}
	s.startedAt = s.stopwatch.StartStopwatch()

	if config.AsyncMode {
		if err := s.startAsyncChecking(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RegisterProvider registers a health provider
func (s *Service) RegisterProvider(p HealthProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = append(s.providers, p)
}

// Check runs every provider concurrently, each bounded by DefaultTimeout.
// With no providers the service is DOWN.
func (s *Service) Check(ctx context.Context) ([]HealthCheckResult, HealthStatus) {
	s.mu.RLock()
	providers := append([]HealthProvider(nil), s.providers...)
	s.mu.RUnlock()

	if len(providers) == 0 {
		return []HealthCheckResult{}, StatusDown
	}

	results := make([]HealthCheckResult, len(providers))
	var wg sync.WaitGroup
	for i, p := range providers {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.checkOne(ctx, p)
		}()
	}
	wg.Wait()

	status := s.aggregate(results)
	if s.config.AsyncMode {
		s.mu.Lock()
		s.cached = results
		s.status = status
		s.cachedAt = time.Now()
		s.mu.Unlock()
	}
	return results, status
}

func (s *Service) checkOne(ctx context.Context, p HealthProvider) HealthCheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()

	sw := s.stopwatch.StartStopwatch()
	done := make(chan HealthCheckResult, 1)
	go func() {
		done <- p.Check(ctx)
	}()

	var result HealthCheckResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = HealthCheckResult{
			Name:      p.Name(),
			Status:    StatusDown,
			Details:   map[string]interface{}{"error": "timeout"},
			CheckedAt: time.Now(),
			Error:     "health check timeout",
		}
	}
	result.Duration = sw.Elapsed()
	return result
}

// GetCachedResults returns the last background results. Without async mode
// it runs a check.
func (s *Service) GetCachedResults() ([]HealthCheckResult, HealthStatus) {
	if !s.config.AsyncMode {
		return s.Check(context.Background())
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]HealthCheckResult(nil), s.cached...), s.status
}

func (s *Service) aggregate(results []HealthCheckResult) HealthStatus {
	if len(results) == 0 {
		return StatusDown
	}

	switch s.config.AggregationStrategy {
	case StrategyAny:
		best := StatusDown
		for _, r := range results {
			if r.Status.severity() < best.severity() {
				best = r.Status
			}
		}
		return best

	case StrategyCritical:
		critical := make(map[string]bool, len(s.config.CriticalProviders))
		for _, name := range s.config.CriticalProviders {
			critical[name] = true
		}
		worst := StatusUp
		for _, r := range results {
			status := r.Status
			if !critical[r.Name] && status == StatusDown {
				status = StatusDegraded
			}
			if status.severity() > worst.severity() {
				worst = status
			}
		}
		return worst

	default:
		worst := StatusUp
		for _, r := range results {
			if r.Status.severity() > worst.severity() {
				worst = r.Status
			}
		}
		return worst
	}
}

func (s *Service) startAsyncChecking() error {
	periodic, ok := scheduler.AsPeriodic(s.config.Scheduler)
	if !ok {
		return fmt.Errorf("health: async mode needs periodic scheduling")
	}

	h, err := periodic.SchedulePeriodicWithState(0, func(state *scheduler.PeriodicState) {
		state.Period = s.config.CheckInterval
		s.Check(context.Background())
	})
	if err != nil {
		return fmt.Errorf("health: schedule checks: %w", err)
	}

	s.mu.Lock()
	s.asyncHandle = h
	s.mu.Unlock()
	return nil
}

// Stop cancels background checking. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	h := s.asyncHandle
	s.asyncHandle = nil
	s.mu.Unlock()

	if h != nil {
		h.Dispose()
	}
}

// Uptime is measured on the scheduler's monotonic stopwatch
func (s *Service) Uptime() time.Duration {
	return s.startedAt.Elapsed()
}

// GetHealthResponse returns a formatted health response
func (s *Service) GetHealthResponse(ctx context.Context) HealthResponse {
	var results []HealthCheckResult
	var status HealthStatus
	if s.config.AsyncMode {
		results, status = s.GetCachedResults()
	} else {
		results, status = s.Check(ctx)
	}

	details := map[string]interface{}{
		"total_checks": len(results),
		"strategy":     s.config.AggregationStrategy,
	}
	if s.config.AsyncMode {
		s.mu.RLock()
		details["cached_at"] = s.cachedAt
		s.mu.RUnlock()
	}

	return HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    results,
		Details:   details,
	}
}
